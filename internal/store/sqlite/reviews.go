package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// reviewColumns is the ordered list of columns selected in review queries.
// Must match the scan order in scanReview.
const reviewColumns = `id, writer_id, song_id, blurb, blurb_backup, score, sort_order, status, create_date`

func scanReview(sc scanner) (*domain.Review, error) {
	var (
		r          domain.Review
		status     string
		createDate string
	)

	err := sc.Scan(
		&r.ID,
		&r.WriterID,
		&r.SongID,
		&r.Blurb,
		&r.BlurbBackup,
		&r.Score,
		&r.SortOrder,
		&status,
		&createDate,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.ReviewStatus(status)
	if r.CreateDate, err = parseTime(createDate); err != nil {
		return nil, fmt.Errorf("parse create_date: %w", err)
	}
	return &r, nil
}

// CreateReview inserts a new review.
// Returns store.ErrAlreadyExists if the writer already reviewed the song.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.WriterID,
		r.SongID,
		r.Blurb,
		r.BlurbBackup,
		r.Score,
		r.SortOrder,
		string(r.Status),
		formatTime(r.CreateDate),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetReview returns a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	r, err := scanReview(row)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// UpdateReview saves the blurb, score, order and status of a review.
func (s *Store) UpdateReview(ctx context.Context, r *domain.Review) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE reviews SET blurb = ?, blurb_backup = ?, score = ?, sort_order = ?, status = ?
		WHERE id = ?`,
		r.Blurb,
		r.BlurbBackup,
		r.Score,
		r.SortOrder,
		string(r.Status),
		r.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetWriterReviewForSong returns the writer's review of a song.
func (s *Store) GetWriterReviewForSong(ctx context.Context, writerID, songID string) (*domain.Review, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE writer_id = ? AND song_id = ?`, writerID, songID)
	r, err := scanReview(row)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// ListSongReviews returns every review of a song in display order.
func (s *Store) ListSongReviews(ctx context.Context, songID string) ([]*domain.Review, error) {
	return s.queryReviews(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE song_id = ?
		ORDER BY sort_order, create_date, rowid`,
		songID)
}

// ListReviewsByStatus returns the song's reviews in statuses, in display order.
// Ties on sort_order fall back to creation order.
func (s *Store) ListReviewsByStatus(ctx context.Context, songID string, statuses domain.StatusSet) ([]*domain.Review, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := append([]any{songID}, stringArgs(statuses)...)
	return s.queryReviews(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE song_id = ? AND status IN (`+placeholders(len(statuses))+`)
		ORDER BY sort_order, create_date, rowid`,
		args...)
}

// ListWriterReviews returns a writer's non-removed reviews, newest first.
func (s *Store) ListWriterReviews(ctx context.Context, writerID string, filter store.WriterReviewFilter) ([]*domain.Review, error) {
	query := `
		SELECT r.id, r.writer_id, r.song_id, r.blurb, r.blurb_backup, r.score, r.sort_order, r.status, r.create_date
		FROM reviews r
		JOIN songs s ON s.id = r.song_id
		WHERE r.writer_id = ? AND r.status <> 'removed'`
	args := []any{writerID}

	if len(filter.SongStatuses) > 0 {
		query += ` AND s.status IN (` + placeholders(len(filter.SongStatuses)) + `)`
		args = append(args, stringArgs(filter.SongStatuses)...)
	}
	if filter.Year > 0 {
		start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		query += ` AND r.create_date >= ? AND r.create_date < ?`
		args = append(args, formatTime(start), formatTime(start.AddDate(1, 0, 0)))
	}
	query += ` ORDER BY r.create_date DESC, r.rowid DESC`

	return s.queryReviews(ctx, query, args...)
}

// SetReviewStatuses moves the song's reviews in from to status to.
func (s *Store) SetReviewStatuses(ctx context.Context, songID string, from domain.StatusSet, to domain.ReviewStatus) (int, error) {
	if len(from) == 0 {
		return 0, nil
	}
	args := append([]any{string(to), songID}, stringArgs(from)...)
	res, err := s.q.ExecContext(ctx, `
		UPDATE reviews SET status = ?
		WHERE song_id = ? AND status IN (`+placeholders(len(from))+`)`,
		args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// SaveReviewOrders writes all orders in one transaction. An unknown review
// ID fails the whole batch with store.ErrNotFound.
func (s *Store) SaveReviewOrders(ctx context.Context, orders []store.ReviewOrder) error {
	if len(orders) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *Store) error {
		for _, o := range orders {
			res, err := tx.q.ExecContext(ctx,
				`UPDATE reviews SET sort_order = ? WHERE id = ?`, o.SortOrder, o.ReviewID)
			if err != nil {
				return fmt.Errorf("update sort_order of %s: %w", o.ReviewID, err)
			}
			if err := requireRow(res); err != nil {
				return fmt.Errorf("update sort_order of %s: %w", o.ReviewID, err)
			}
		}
		return nil
	})
}

func (s *Store) queryReviews(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
