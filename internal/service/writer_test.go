package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/auth"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterService_Create(t *testing.T) {
	s := setupStore(t)
	svc := NewWriterService(s, testLogger())
	ctx := context.Background()

	w, err := svc.Create(ctx, CreateWriterRequest{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "correct horse",
		IsStaff:   true,
	})
	require.NoError(t, err)
	assert.True(t, w.IsActive)
	assert.True(t, w.CanEdit())

	ok, err := auth.VerifyPassword(w.PasswordHash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(ctx, CreateWriterRequest{Username: "jdoe", FirstName: "Other", Password: "password123"})
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyExists))

	_, err = svc.Create(ctx, CreateWriterRequest{Username: "short", FirstName: "S", Password: "pw"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestWriterService_BlurbsWithoutHistory(t *testing.T) {
	s := setupStore(t)
	svc := NewWriterService(s, testLogger())
	createWriter(t, s, "wri-1")

	out, err := svc.Blurbs(context.Background(), "wri-1", BlurbQuery{})
	require.NoError(t, err)
	assert.Empty(t, out.Blurbs)
	assert.True(t, out.LastBlurbDate.Equal(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestWriterService_BlurbBuckets(t *testing.T) {
	s := setupStore(t)
	svc := NewWriterService(s, testLogger())
	ctx := context.Background()
	createWriter(t, s, "wri-1")
	createSong(t, s, "song-open", domain.SongOpen)
	createSong(t, s, "song-pub", domain.SongPublished)
	createSong(t, s, "song-old", domain.SongPublished)

	add := func(id, songID string, status domain.ReviewStatus, at time.Time) {
		require.NoError(t, s.CreateReview(ctx, &domain.Review{
			ID: id, WriterID: "wri-1", SongID: songID, Status: status, Score: 6, SortOrder: 1, CreateDate: at,
		}))
	}
	add("rev-open", "song-open", domain.ReviewSaved, testNow)
	add("rev-pub", "song-pub", domain.ReviewPublished, testNow.Add(-time.Hour))
	add("rev-old", "song-old", domain.ReviewPublished, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	all, err := svc.Blurbs(ctx, "wri-1", BlurbQuery{})
	require.NoError(t, err)
	require.Len(t, all.Blurbs, 3)
	assert.Equal(t, "rev-open", all.Blurbs[0].ID)
	assert.Equal(t, "song-open", all.Blurbs[0].Song.ID)

	saved, err := svc.Blurbs(ctx, "wri-1", BlurbQuery{Bucket: BucketSaved})
	require.NoError(t, err)
	require.Len(t, saved.Blurbs, 1)
	assert.Equal(t, "rev-open", saved.Blurbs[0].ID)

	published, err := svc.Blurbs(ctx, "wri-1", BlurbQuery{Bucket: BucketPublished, Year: 2025})
	require.NoError(t, err)
	require.Len(t, published.Blurbs, 1)
	assert.Equal(t, "rev-old", published.Blurbs[0].ID)
	// The last blurb date ignores the filters.
	assert.True(t, published.LastBlurbDate.Equal(testNow))

	_, err = svc.Blurbs(ctx, "wri-1", BlurbQuery{Bucket: "drafts"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = svc.Blurbs(ctx, "wri-missing", BlurbQuery{})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}
