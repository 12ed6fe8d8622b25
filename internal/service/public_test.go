package service

import (
	"context"
	"errors"
	"testing"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/ratelimit"
	"github.com/singlesjukebox/jukebox-server/internal/search"
	"github.com/singlesjukebox/jukebox-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publicFixture struct {
	svc     *PublicService
	publish *PublishService
	store   *sqlite.Store
}

func setupPublic(t *testing.T, limiter *ratelimit.KeyedRateLimiter) publicFixture {
	t.Helper()
	s := setupStore(t)

	index, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = index.Close() //nolint:errcheck // Test cleanup
	})

	return publicFixture{
		svc:     NewPublicService(s, index, limiter, 10, nil, testLogger()),
		publish: NewPublishService(s, index, nil, nil, testLogger()),
		store:   s,
	}
}

func TestPublicService_GetPostOnlyWhenPublished(t *testing.T) {
	f := setupPublic(t, nil)
	ctx := context.Background()
	createSong(t, f.store, "song-1", domain.SongOpen)
	createReviews(t, f.store, "song-1", "A")

	_, err := f.svc.GetPost(ctx, "song-1")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
	_, err = f.svc.GetPost(ctx, "song-missing")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	_, err = f.publish.Publish(ctx, "song-1", nil)
	require.NoError(t, err)

	view, err := f.svc.GetPost(ctx, "song-1")
	require.NoError(t, err)
	assert.Equal(t, "song-1", view.Song.ID)
	assert.Contains(t, view.Post.HTMLContent, "blurb A")
}

func TestPublicService_HiddenPost(t *testing.T) {
	f := setupPublic(t, nil)
	ctx := context.Background()
	createSong(t, f.store, "song-1", domain.SongPublished)
	require.NoError(t, f.store.CreatePublicPost(ctx, &domain.PublicPost{
		ID: "post-1", SongID: "song-1", Slug: "hidden", Title: "Hidden", PublishedOn: testNow,
	}))

	_, err := f.svc.GetPost(ctx, "song-1")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	page, err := f.svc.ListPosts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "song-1", page.Items[0].Song.ID)
	assert.Nil(t, page.Items[0].Post)
}

func TestPublicService_Comments(t *testing.T) {
	f := setupPublic(t, nil)
	ctx := context.Background()
	createSong(t, f.store, "song-1", domain.SongOpen)
	_, err := f.publish.Publish(ctx, "song-1", nil)
	require.NoError(t, err)

	comments, err := f.svc.ListComments(ctx, "song-1")
	require.NoError(t, err)
	assert.Empty(t, comments)

	c, err := f.svc.AddComment(ctx, "song-1", "10.0.0.1", AddCommentRequest{Name: " Reader ", CommentText: "Too low!"})
	require.NoError(t, err)
	assert.Equal(t, "Reader", c.Name)
	assert.True(t, c.Visible)

	comments, err = f.svc.ListComments(ctx, "song-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Too low!", comments[0].CommentText)

	_, err = f.svc.AddComment(ctx, "song-1", "10.0.0.1", AddCommentRequest{Name: "Reader"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = f.svc.AddComment(ctx, "song-missing", "10.0.0.1", AddCommentRequest{Name: "Reader", CommentText: "?"})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestPublicService_CommentRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)

	f := setupPublic(t, limiter)
	ctx := context.Background()
	createSong(t, f.store, "song-1", domain.SongOpen)
	_, err := f.publish.Publish(ctx, "song-1", nil)
	require.NoError(t, err)

	req := AddCommentRequest{Name: "Reader", CommentText: "First!"}
	_, err = f.svc.AddComment(ctx, "song-1", "10.0.0.1", req)
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, "song-1", "10.0.0.1", req)
	assert.True(t, errors.Is(err, domainerrors.ErrRateLimited))

	// Other clients are not affected.
	_, err = f.svc.AddComment(ctx, "song-1", "10.0.0.2", req)
	require.NoError(t, err)
}

func TestPublicService_Search(t *testing.T) {
	f := setupPublic(t, nil)
	ctx := context.Background()
	song := &domain.Song{ID: "song-1", Artist: "Kraftwerk", Title: "Computer Love", Status: domain.SongOpen, UploadDate: testNow}
	require.NoError(t, f.store.CreateSong(ctx, song))
	_, err := f.publish.Publish(ctx, "song-1", nil)
	require.NoError(t, err)

	res, err := f.svc.Search(ctx, "kraftwerk", 500, 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "song-1", res.Hits[0].SongID)

	_, err = f.svc.Search(ctx, "   ", 10, 0)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}
