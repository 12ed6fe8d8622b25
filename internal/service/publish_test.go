package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPublish(t *testing.T) (*PublishService, *sqlite.Store, *fakeIndexer, *fakeBlog) {
	t.Helper()
	s := setupStore(t)
	indexer := &fakeIndexer{}
	blog := &fakeBlog{}
	svc := NewPublishService(s, indexer, blog, metrics.New(), testLogger())
	svc.now = func() time.Time { return testNow }
	return svc, s, indexer, blog
}

func TestPublishService_Preview(t *testing.T) {
	svc, s, _, _ := setupPublish(t)
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B")

	html, err := svc.Preview(context.Background(), "song-1", true)
	require.NoError(t, err)
	assert.Contains(t, html, "blurb A")
	assert.Contains(t, html, "blurb B")

	_, err = svc.Preview(context.Background(), "song-missing", false)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestPublishService_PublishNow(t *testing.T) {
	svc, s, indexer, blog := setupPublish(t)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B")

	res, err := svc.Publish(ctx, "song-1", nil)
	require.NoError(t, err)
	assert.False(t, res.Scheduled)
	assert.Empty(t, res.BlogError)
	assert.Equal(t, domain.SongPublished, res.Song.Status)
	assert.Equal(t, "artist-song-1-title-song-1", res.Post.Slug)
	assert.True(t, res.Post.Visible)

	reviews, err := s.ListSongReviews(ctx, "song-1")
	require.NoError(t, err)
	for _, r := range reviews {
		assert.Equal(t, domain.ReviewPublished, r.Status)
	}

	require.Len(t, indexer.indexed, 1)
	require.Len(t, blog.posts, 1)
	assert.Equal(t, "Artist song-1 - Title song-1", blog.posts[0].Title)

	song, err := s.GetSong(ctx, "song-1")
	require.NoError(t, err)
	assert.Equal(t, "101", song.WordPressPostID)
	require.NotNil(t, song.PublishDate)
	assert.True(t, song.PublishDate.Equal(testNow))

	_, err = svc.Publish(ctx, "song-1", nil)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))
}

func TestPublishService_BlogFailureIsReported(t *testing.T) {
	svc, s, _, blog := setupPublish(t)
	blog.err = errors.New("xml-rpc fault 403")
	createSong(t, s, "song-1", domain.SongOpen)

	res, err := svc.Publish(context.Background(), "song-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "xml-rpc fault 403", res.BlogError)
	assert.Equal(t, domain.SongPublished, res.Song.Status)
}

func TestPublishService_ScheduleAndPublishDue(t *testing.T) {
	svc, s, indexer, _ := setupPublish(t)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createSong(t, s, "song-2", domain.SongOpen)
	createReviews(t, s, "song-1", "A")

	at := testNow.Add(2 * time.Hour)
	res, err := svc.Publish(ctx, "song-1", &at)
	require.NoError(t, err)
	assert.True(t, res.Scheduled)
	assert.Equal(t, domain.SongClosed, res.Song.Status)

	// Nothing is due yet.
	n, err := svc.PublishDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.now = func() time.Time { return testNow.Add(3 * time.Hour) }
	n, err = svc.PublishDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, indexer.indexed, 1)

	song, err := s.GetSong(ctx, "song-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SongPublished, song.Status)
	assert.True(t, song.PublishDate.Equal(at))

	other, err := s.GetSong(ctx, "song-2")
	require.NoError(t, err)
	assert.Equal(t, domain.SongOpen, other.Status)
}

func TestPublishService_RemovedSongCannotPublish(t *testing.T) {
	svc, s, _, _ := setupPublish(t)
	createSong(t, s, "song-1", domain.SongRemoved)

	_, err := svc.Publish(context.Background(), "song-1", nil)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))
}
