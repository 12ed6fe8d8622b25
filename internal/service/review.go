package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/id"
	"github.com/singlesjukebox/jukebox-server/internal/mail"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// ReviewService handles writing, removing and listing blurbs.
type ReviewService struct {
	store   store.Store
	sender  mail.Sender
	admins  []string
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewReviewService creates a review service. Removal notices go to admins,
// or to every admin writer's e-mail when admins is empty.
func NewReviewService(store store.Store, sender mail.Sender, admins []string, metrics *metrics.Metrics, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:   store,
		sender:  sender,
		admins:  admins,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WriteReviewRequest is a writer's blurb for a song.
type WriteReviewRequest struct {
	Blurb string `json:"blurb" validate:"max=5000"`
	Score int    `json:"score" validate:"min=0,max=10"`
	Draft bool   `json:"draft,omitempty"`
}

// Write creates or updates the writer's review of a song.
//
// A saved review is counted: a new one is appended after the song's other
// counted reviews and its blurb is backed up. A draft is not counted; turning
// a saved review back into a draft closes the gap it leaves.
func (s *ReviewService) Write(ctx context.Context, writerID, songID string, req WriteReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	status := domain.ReviewSaved
	if req.Draft {
		status = domain.ReviewDraft
	}

	var review *domain.Review
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		song, err := tx.GetSong(ctx, songID)
		if err != nil {
			return storeErr(err, "get song", "song", songID)
		}
		if !song.AcceptsReviews() {
			return domainerrors.Conflict(fmt.Sprintf("song %s is %s and no longer takes blurbs", songID, song.Status))
		}

		counted, err := tx.ListReviewsByStatus(ctx, songID, domain.CountedStatuses)
		if err != nil {
			return fmt.Errorf("list counted reviews: %w", err)
		}

		existing, err := tx.GetWriterReviewForSong(ctx, writerID, songID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			review, err = s.newReview(writerID, songID)
			if err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("get writer review: %w", err)
		case existing.Status == domain.ReviewRemoved:
			return domainerrors.Conflict("this blurb was removed by an editor")
		default:
			review = existing
		}

		wasCounted := existing != nil && existing.IsCounted()
		review.Blurb = strings.TrimSpace(req.Blurb)
		review.Score = req.Score
		review.Status = status

		switch {
		case status == domain.ReviewSaved:
			review.BlurbBackup = review.Blurb
			if !wasCounted {
				review.SortOrder = len(counted) + 1
			}
		default:
			review.SortOrder = 0
		}

		if existing == nil {
			if err := tx.CreateReview(ctx, review); err != nil {
				return storeErr(err, "create review", "review", review.ID)
			}
			return nil
		}
		if err := tx.UpdateReview(ctx, review); err != nil {
			return storeErr(err, "update review", "review", review.ID)
		}
		if wasCounted && !review.IsCounted() {
			return renumber(ctx, tx, songID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveReviewWritten(string(review.Status))
	s.logger.Info("review written",
		"review_id", review.ID,
		"song_id", songID,
		"writer_id", writerID,
		"status", string(review.Status),
		"sort_order", review.SortOrder,
	)
	return review, nil
}

func (s *ReviewService) newReview(writerID, songID string) (*domain.Review, error) {
	reviewID, err := id.Review.New()
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}
	return &domain.Review{
		ID:         reviewID,
		WriterID:   writerID,
		SongID:     songID,
		CreateDate: s.now().UTC(),
	}, nil
}

// Remove takes a review out of its song. The remaining counted reviews are
// renumbered 1..N and the admins are told by e-mail. Removing a removed
// review does nothing.
func (s *ReviewService) Remove(ctx context.Context, reviewID string) (*domain.Review, error) {
	var (
		review  *domain.Review
		song    *domain.Song
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		review, err = tx.GetReview(ctx, reviewID)
		if err != nil {
			return storeErr(err, "get review", "review", reviewID)
		}
		if review.Status == domain.ReviewRemoved {
			return nil
		}

		song, err = tx.GetSong(ctx, review.SongID)
		if err != nil {
			return storeErr(err, "get song", "song", review.SongID)
		}

		review.Status = domain.ReviewRemoved
		review.SortOrder = 0
		if err := tx.UpdateReview(ctx, review); err != nil {
			return storeErr(err, "update review", "review", reviewID)
		}
		changed = true
		return renumber(ctx, tx, review.SongID)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return review, nil
	}

	s.logger.Info("review removed", "review_id", reviewID, "song_id", review.SongID)
	s.notifyRemoved(ctx, review, song)
	return review, nil
}

// notifyRemoved sends the removal notice. Failures are logged, never returned:
// the removal itself has already been committed.
func (s *ReviewService) notifyRemoved(ctx context.Context, review *domain.Review, song *domain.Song) {
	recipients, err := s.recipients(ctx)
	if err != nil {
		s.logger.Warn("could not resolve notification recipients", "error", err)
		return
	}

	writerName := review.WriterID
	if w, err := s.store.GetWriter(ctx, review.WriterID); err == nil {
		writerName = w.FullName()
	}

	err = s.sender.Send(ctx, mail.Message{
		To:      recipients,
		Subject: "Blurb removed: " + song.DisplayName(),
		Body: fmt.Sprintf("The blurb by %s on %s has been removed.\n\nScore: %d\n\n%s\n",
			writerName, song.DisplayName(), review.Score, review.Blurb),
	})
	s.metrics.ObserveNotification(err)
	if err != nil {
		s.logger.Warn("removal notification failed", "review_id", review.ID, "error", err)
	}
}

func (s *ReviewService) recipients(ctx context.Context) ([]string, error) {
	if len(s.admins) > 0 {
		return s.admins, nil
	}
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, a := range admins {
		if a.Email != "" {
			out = append(out, a.Email)
		}
	}
	return out, nil
}

// ReviewWithWriter is a review joined with its author.
type ReviewWithWriter struct {
	*domain.Review
	Writer *domain.Writer `json:"writer,omitempty"`
}

// SongReviews is every review of a song plus the song's score summary.
type SongReviews struct {
	Song    *domain.Song       `json:"song"`
	Summary SongSummary        `json:"summary"`
	Reviews []ReviewWithWriter `json:"reviews"`
}

// ListForSong returns all reviews of a song in sort order.
func (s *ReviewService) ListForSong(ctx context.Context, songID string) (*SongReviews, error) {
	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return nil, storeErr(err, "get song", "song", songID)
	}

	reviews, err := s.store.ListSongReviews(ctx, songID)
	if err != nil {
		return nil, fmt.Errorf("list song reviews: %w", err)
	}

	writerIDs := make([]string, 0, len(reviews))
	var counted []*domain.Review
	for _, r := range reviews {
		writerIDs = append(writerIDs, r.WriterID)
		if r.IsCounted() {
			counted = append(counted, r)
		}
	}

	writers, err := s.store.GetWritersByIDs(ctx, writerIDs)
	if err != nil {
		return nil, fmt.Errorf("get writers: %w", err)
	}

	out := &SongReviews{
		Song:    song,
		Summary: SummarizeSong(song, counted),
		Reviews: make([]ReviewWithWriter, 0, len(reviews)),
	}
	for _, r := range reviews {
		out.Reviews = append(out.Reviews, ReviewWithWriter{Review: r, Writer: writers[r.WriterID]})
	}
	return out, nil
}
