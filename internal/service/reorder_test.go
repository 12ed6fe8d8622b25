package service

import (
	"context"
	"errors"
	"testing"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReorder(t *testing.T, includePublished bool) (*ReorderService, *metrics.Metrics, func() map[string]int) {
	t.Helper()
	s := setupStore(t)
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B", "C", "D")

	m := metrics.New()
	svc := NewReorderService(s, includePublished, m, testLogger())
	return svc, m, func() map[string]int { return orderOf(t, s, "song-1") }
}

func TestReorderService_MoveSequence(t *testing.T) {
	svc, _, orders := setupReorder(t, false)
	ctx := context.Background()

	res, err := svc.Move(ctx, "C", ordering.MoveUp)
	require.NoError(t, err)
	assert.Equal(t, "song-1", res.SongID)
	assert.ElementsMatch(t, []ordering.Assignment{{ID: "C", SortOrder: 2}, {ID: "B", SortOrder: 3}}, res.Changed)
	assert.Equal(t, map[string]int{"A": 1, "C": 2, "B": 3, "D": 4}, orders())

	_, err = svc.Move(ctx, "D", ordering.MoveTop)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"D": 1, "A": 2, "C": 3, "B": 4}, orders())

	_, err = svc.Move(ctx, "D", ordering.MoveBottom)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "C": 2, "B": 3, "D": 4}, orders())

	_, err = svc.Move(ctx, "A", ordering.MoveDown)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"C": 1, "A": 2, "B": 3, "D": 4}, orders())
}

func TestReorderService_MoveAtBoundaryIsNoop(t *testing.T) {
	svc, _, orders := setupReorder(t, false)
	ctx := context.Background()

	res, err := svc.Move(ctx, "A", ordering.MoveUp)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)

	res, err = svc.Move(ctx, "D", ordering.MoveDown)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)

	res, err = svc.Move(ctx, "A", ordering.MoveTop)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)

	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}, orders())
}

func TestReorderService_MoveErrors(t *testing.T) {
	svc, _, orders := setupReorder(t, false)
	ctx := context.Background()

	_, err := svc.Move(ctx, "C", ordering.Move("sideways"))
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = svc.Move(ctx, "missing", ordering.MoveTop)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}, orders())
}

func TestReorderService_MoveIneligibleReview(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "B")

	createWriter(t, s, "wri-draft")
	require.NoError(t, s.CreateReview(ctx, &domain.Review{
		ID: "draft", WriterID: "wri-draft", SongID: "song-1", Status: domain.ReviewDraft, CreateDate: testNow,
	}))

	svc := NewReorderService(s, false, nil, testLogger())
	_, err := svc.Move(ctx, "draft", ordering.MoveTop)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))
}

func TestReorderService_PublishedExcludedByDefault(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "P", "B")

	review, err := s.GetReview(ctx, "P")
	require.NoError(t, err)
	review.Status = domain.ReviewPublished
	require.NoError(t, s.UpdateReview(ctx, review))

	svc := NewReorderService(s, false, nil, testLogger())

	_, err = svc.Move(ctx, "P", ordering.MoveTop)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))

	// Only A and B take part and P keeps its order, so P and A share 2.
	// Counted orders are no longer unique in this mixed state.
	_, err = svc.Move(ctx, "B", ordering.MoveTop)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"B": 1, "P": 2, "A": 2}, orderOf(t, s, "song-1"))
}

func TestReorderService_PublishedIncludedWhenConfigured(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	createSong(t, s, "song-1", domain.SongOpen)
	createReviews(t, s, "song-1", "A", "P", "B")

	review, err := s.GetReview(ctx, "P")
	require.NoError(t, err)
	review.Status = domain.ReviewPublished
	require.NoError(t, s.UpdateReview(ctx, review))

	svc := NewReorderService(s, true, nil, testLogger())
	assert.Equal(t, domain.StatusSet{domain.ReviewSaved, domain.ReviewPublished}, svc.Statuses())

	_, err = svc.Move(ctx, "B", ordering.MoveTop)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"B": 1, "A": 2, "P": 3}, orderOf(t, s, "song-1"))
}

func TestReorderService_BulkReorder(t *testing.T) {
	svc, _, orders := setupReorder(t, false)

	res, err := svc.BulkReorder(context.Background(), "song-1", []ordering.BulkEntry{
		{ID: "A", SortOrder: "4"},
		{ID: "B", SortOrder: "2"},
		{ID: "C", SortOrder: "1"},
		{ID: "D", SortOrder: "3"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Changed, 3) // B already sits at 2
	assert.Equal(t, map[string]int{"A": 4, "B": 2, "C": 1, "D": 3}, orders())
}

func TestReorderService_BulkMissingOrderChangesNothing(t *testing.T) {
	svc, _, orders := setupReorder(t, false)

	_, err := svc.BulkReorder(context.Background(), "song-1", []ordering.BulkEntry{
		{ID: "A", SortOrder: "4"},
		{ID: "B", SortOrder: ""},
		{ID: "C", SortOrder: "1"},
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Equal(t, ordering.MsgSortOrderRequired, domainErr.Message)
	assert.Equal(t, map[string]string{"form-1-sort_order": ordering.MsgSortOrderRequired}, domainErr.Details)

	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}, orders())
}

func TestReorderService_BulkUnknownReview(t *testing.T) {
	svc, _, orders := setupReorder(t, false)
	ctx := context.Background()

	_, err := svc.BulkReorder(ctx, "song-1", []ordering.BulkEntry{
		{ID: "A", SortOrder: "2"},
		{ID: "Z", SortOrder: "1"},
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Details, "form-1-id")
	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}, orders())

	_, err = svc.BulkReorder(ctx, "no-such-song", []ordering.BulkEntry{{ID: "A", SortOrder: "1"}})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	_, err = svc.BulkReorder(ctx, "song-1", nil)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}
