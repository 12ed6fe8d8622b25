package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviews(t *testing.T, admins []string) (*ReviewService, *sqlite.Store, *fakeSender) {
	t.Helper()
	s := setupStore(t)
	sender := &fakeSender{}
	svc := NewReviewService(s, sender, admins, nil, testLogger())
	svc.now = func() time.Time { return testNow }
	return svc, s, sender
}

func TestReviewService_WriteAppendsCountedReview(t *testing.T) {
	svc, s, _ := setupReviews(t, nil)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B")
	createWriter(t, s, "wri-new")

	review, err := svc.Write(ctx, "wri-new", "song-1", WriteReviewRequest{Blurb: "  Huge chorus.  ", Score: 8})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSaved, review.Status)
	assert.Equal(t, 3, review.SortOrder)
	assert.Equal(t, "Huge chorus.", review.Blurb)

	stored, err := s.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "Huge chorus.", stored.BlurbBackup)
	assert.True(t, testNow.Equal(stored.CreateDate))
}

func TestReviewService_WriteUpdateKeepsOrder(t *testing.T) {
	svc, s, _ := setupReviews(t, nil)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createWriter(t, s, "wri-1")
	createWriter(t, s, "wri-2")

	first, err := svc.Write(ctx, "wri-1", "song-1", WriteReviewRequest{Blurb: "one", Score: 3})
	require.NoError(t, err)
	_, err = svc.Write(ctx, "wri-2", "song-1", WriteReviewRequest{Blurb: "two", Score: 4})
	require.NoError(t, err)

	updated, err := svc.Write(ctx, "wri-1", "song-1", WriteReviewRequest{Blurb: "one, revised", Score: 9})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, 1, updated.SortOrder)
	assert.Equal(t, 9, updated.Score)
}

func TestReviewService_DraftIsNotCounted(t *testing.T) {
	svc, s, _ := setupReviews(t, nil)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B", "C")

	// Turning A into a draft closes its gap.
	a, err := s.GetReview(ctx, "A")
	require.NoError(t, err)
	review, err := svc.Write(ctx, a.WriterID, "song-1", WriteReviewRequest{Blurb: "rethinking", Score: 2, Draft: true})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewDraft, review.Status)
	assert.Equal(t, 0, review.SortOrder)
	assert.Equal(t, []string{"B", "C"}, countedIDs(t, s, "song-1"))
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, orderOf(t, s, "song-1"))

	// Saving it again appends it at the end.
	review, err = svc.Write(ctx, a.WriterID, "song-1", WriteReviewRequest{Blurb: "fine, a 6", Score: 6})
	require.NoError(t, err)
	assert.Equal(t, 3, review.SortOrder)
	assert.Equal(t, []string{"B", "C", "A"}, countedIDs(t, s, "song-1"))
}

func TestReviewService_WriteRejections(t *testing.T) {
	svc, s, _ := setupReviews(t, nil)
	ctx := context.Background()
	createSong(t, s, "open", domain.SongOpen)
	createSong(t, s, "closed", domain.SongClosed)
	createWriter(t, s, "wri-1")

	_, err := svc.Write(ctx, "wri-1", "closed", WriteReviewRequest{Blurb: "late", Score: 5})
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))

	_, err = svc.Write(ctx, "wri-1", "missing", WriteReviewRequest{Blurb: "?", Score: 5})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	_, err = svc.Write(ctx, "wri-1", "open", WriteReviewRequest{Blurb: "too good", Score: 11})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestReviewService_RemoveRenumbersAndNotifies(t *testing.T) {
	svc, s, sender := setupReviews(t, []string{"editor@example.com"})
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B", "C", "D")

	removed, err := svc.Remove(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewRemoved, removed.Status)
	assert.Equal(t, map[string]int{"A": 1, "B": 0, "C": 2, "D": 3}, orderOf(t, s, "song-1"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"editor@example.com"}, sender.sent[0].To)
	assert.Equal(t, "Blurb removed: Artist song-1 - Title song-1", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "blurb B")

	// Removing again changes nothing and sends nothing.
	_, err = svc.Remove(ctx, "B")
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)

	// A removed blurb cannot be rewritten.
	_, err = svc.Write(ctx, removed.WriterID, "song-1", WriteReviewRequest{Blurb: "back", Score: 5})
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))
}

func TestReviewService_RemoveNotifiesAdminWriters(t *testing.T) {
	svc, s, sender := setupReviews(t, nil)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A")

	admin := createWriter(t, s, "wri-admin")
	admin.IsAdmin = true
	require.NoError(t, s.UpdateWriter(ctx, admin))

	_, err := svc.Remove(ctx, "A")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"wri-admin@example.com"}, sender.sent[0].To)
}

func TestReviewService_RemoveSurvivesMailFailure(t *testing.T) {
	svc, s, sender := setupReviews(t, []string{"editor@example.com"})
	ctx := context.Background()
	sender.err = errors.New("smtp down")
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B")

	_, err := svc.Remove(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, countedIDs(t, s, "song-1"))
}

func TestReviewService_ListForSong(t *testing.T) {
	svc, s, _ := setupReviews(t, nil)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B")

	out, err := svc.ListForSong(ctx, "song-1")
	require.NoError(t, err)
	require.Len(t, out.Reviews, 2)
	assert.Equal(t, "A", out.Reviews[0].ID)
	require.NotNil(t, out.Reviews[0].Writer)
	assert.Equal(t, out.Reviews[0].WriterID, out.Reviews[0].Writer.ID)
	assert.Equal(t, 2, out.Summary.BlurbCount)
	assert.InDelta(t, 5.0, out.Summary.AverageScore, 1e-9)
}
