package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/ordering"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// ReorderService moves reviews within a song's display order.
//
// Every operation reads the current orders, plans the new ones and writes
// them inside a single transaction, so two editors reordering the same song
// cannot interleave and leave gaps or duplicates behind.
type ReorderService struct {
	store            store.Store
	metrics          *metrics.Metrics
	logger           *slog.Logger
	includePublished bool
}

// NewReorderService creates a reorder service. When includePublished is set,
// published reviews take part in moves alongside saved ones.
func NewReorderService(store store.Store, includePublished bool, metrics *metrics.Metrics, logger *slog.Logger) *ReorderService {
	return &ReorderService{
		store:            store,
		metrics:          metrics,
		logger:           logger,
		includePublished: includePublished,
	}
}

// ReorderResult reports which reviews of a song got a new order.
type ReorderResult struct {
	SongID  string                `json:"song_id"`
	Changed []ordering.Assignment `json:"changed"`
}

// Statuses returns the review statuses that single moves operate on.
func (s *ReorderService) Statuses() domain.StatusSet {
	return domain.ReorderStatuses(s.includePublished)
}

// Move applies one of top, bottom, up or down to a review. Moving the first
// review up or the last review down succeeds without changing anything.
func (s *ReorderService) Move(ctx context.Context, reviewID string, move ordering.Move) (*ReorderResult, error) {
	result, err := s.move(ctx, reviewID, move)
	s.metrics.ObserveReorder(string(move), err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review moved",
		"review_id", reviewID,
		"song_id", result.SongID,
		"move", string(move),
		"changed", len(result.Changed),
	)
	return result, nil
}

func (s *ReorderService) move(ctx context.Context, reviewID string, move ordering.Move) (*ReorderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := ordering.ParseMove(string(move)); err != nil {
		return nil, domainerrors.Validationf("unknown move %q", move)
	}

	statuses := s.Statuses()
	result := &ReorderResult{}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		review, err := tx.GetReview(ctx, reviewID)
		if err != nil {
			return storeErr(err, "get review", "review", reviewID)
		}
		if !statuses.Contains(review.Status) {
			return domainerrors.Conflict(fmt.Sprintf("review %s is %s and cannot be moved", reviewID, review.Status))
		}

		reviews, err := tx.ListReviewsByStatus(ctx, review.SongID, statuses)
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}

		changed, err := ordering.Plan(toItems(reviews), reviewID, move)
		if errors.Is(err, ordering.ErrNotInSet) {
			return domainerrors.Conflict(fmt.Sprintf("review %s is not in the orderable set", reviewID))
		}
		if err != nil {
			return err
		}

		if err := tx.SaveReviewOrders(ctx, toOrders(changed)); err != nil {
			return fmt.Errorf("save review orders: %w", err)
		}

		result.SongID = review.SongID
		result.Changed = changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkReorder applies orders submitted for a song's counted reviews.
//
// The submission is validated as a whole before anything is written: a
// missing order anywhere fails the batch with "sort order required" and no
// review changes. Valid orders are written as given; duplicates or gaps in
// the submitted set are not repaired.
func (s *ReorderService) BulkReorder(ctx context.Context, songID string, entries []ordering.BulkEntry) (*ReorderResult, error) {
	result, err := s.bulkReorder(ctx, songID, entries)
	s.metrics.ObserveReorder("bulk", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reviews reordered",
		"song_id", songID,
		"submitted", len(entries),
		"changed", len(result.Changed),
	)
	return result, nil
}

func (s *ReorderService) bulkReorder(ctx context.Context, songID string, entries []ordering.BulkEntry) (*ReorderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domainerrors.Validation("no reviews submitted")
	}

	assignments, err := ordering.ValidateBulk(entries)
	if err != nil {
		var ve *ordering.ValidationError
		if errors.As(err, &ve) {
			return nil, domainerrors.ValidationWithDetails(ve.Message, ve.Fields)
		}
		return nil, err
	}

	result := &ReorderResult{SongID: songID}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetSong(ctx, songID); err != nil {
			return storeErr(err, "get song", "song", songID)
		}

		reviews, err := tx.ListReviewsByStatus(ctx, songID, domain.CountedStatuses)
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		current := make(map[string]int, len(reviews))
		for _, r := range reviews {
			current[r.ID] = r.SortOrder
		}

		fields := make(map[string]string)
		var changed []ordering.Assignment
		for i, a := range assignments {
			order, ok := current[a.ID]
			if !ok {
				fields[fmt.Sprintf("form-%d-id", i)] = "not a counted review of this song"
				continue
			}
			if order != a.SortOrder {
				changed = append(changed, a)
			}
		}
		if len(fields) > 0 {
			return domainerrors.ValidationWithDetails("unknown review in submission", fields)
		}

		if err := tx.SaveReviewOrders(ctx, toOrders(changed)); err != nil {
			return fmt.Errorf("save review orders: %w", err)
		}
		result.Changed = changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// renumber closes gaps left in the song's counted reviews, keeping their order.
func renumber(ctx context.Context, tx store.Store, songID string) error {
	reviews, err := tx.ListReviewsByStatus(ctx, songID, domain.CountedStatuses)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	if err := tx.SaveReviewOrders(ctx, toOrders(ordering.Normalize(toItems(reviews)))); err != nil {
		return fmt.Errorf("renumber reviews: %w", err)
	}
	return nil
}

func toItems(reviews []*domain.Review) []ordering.Item {
	items := make([]ordering.Item, len(reviews))
	for i, r := range reviews {
		items[i] = ordering.Item{ID: r.ID, SortOrder: r.SortOrder}
	}
	return items
}

func toOrders(assignments []ordering.Assignment) []store.ReviewOrder {
	orders := make([]store.ReviewOrder, len(assignments))
	for i, a := range assignments {
		orders[i] = store.ReviewOrder{ReviewID: a.ID, SortOrder: a.SortOrder}
	}
	return orders
}
