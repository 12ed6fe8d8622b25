package sqlite

import (
	"context"
	"fmt"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

const weekColumns = `id, week_beginning, week_info, current_week`

func scanWeek(sc scanner) (*domain.ScheduledWeek, error) {
	var (
		w     domain.ScheduledWeek
		begin string
	)
	if err := sc.Scan(&w.ID, &begin, &w.WeekInfo, &w.CurrentWeek); err != nil {
		return nil, err
	}
	t, err := parseTime(begin)
	if err != nil {
		return nil, fmt.Errorf("parse week_beginning: %w", err)
	}
	w.WeekBeginning = t
	w.Days = make(map[string][]string)
	return &w, nil
}

// CreateWeek inserts a week and its day schedule.
// Returns store.ErrAlreadyExists if a week with the same beginning exists.
func (s *Store) CreateWeek(ctx context.Context, w *domain.ScheduledWeek) error {
	return s.inTx(ctx, func(tx *Store) error {
		_, err := tx.q.ExecContext(ctx,
			`INSERT INTO weeks (`+weekColumns+`) VALUES (?, ?, ?, ?)`,
			w.ID, formatTime(w.WeekBeginning), w.WeekInfo, w.CurrentWeek)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		return tx.writeWeekSongs(ctx, w)
	})
}

// GetWeek returns a week with its days.
func (s *Store) GetWeek(ctx context.Context, id string) (*domain.ScheduledWeek, error) {
	w, err := scanWeek(s.q.QueryRowContext(ctx, `SELECT `+weekColumns+` FROM weeks WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return w, s.loadWeekSongs(ctx, w)
}

// GetCurrentWeek returns the current week, falling back to the latest one.
func (s *Store) GetCurrentWeek(ctx context.Context) (*domain.ScheduledWeek, error) {
	w, err := scanWeek(s.q.QueryRowContext(ctx, `
		SELECT `+weekColumns+` FROM weeks
		ORDER BY current_week DESC, week_beginning DESC
		LIMIT 1`))
	if err != nil {
		return nil, notFound(err)
	}
	return w, s.loadWeekSongs(ctx, w)
}

// ListWeeks returns every week, latest first, without day schedules.
func (s *Store) ListWeeks(ctx context.Context) ([]*domain.ScheduledWeek, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+weekColumns+` FROM weeks ORDER BY week_beginning DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []*domain.ScheduledWeek
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// UpdateWeek saves week_info and replaces the day schedule.
func (s *Store) UpdateWeek(ctx context.Context, w *domain.ScheduledWeek) error {
	return s.inTx(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, `UPDATE weeks SET week_info = ? WHERE id = ?`, w.WeekInfo, w.ID)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return err
		}
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM week_songs WHERE week_id = ?`, w.ID); err != nil {
			return fmt.Errorf("clear week_songs: %w", err)
		}
		return tx.writeWeekSongs(ctx, w)
	})
}

// SetCurrentWeek flags id as the current week and clears every other week.
func (s *Store) SetCurrentWeek(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx, `UPDATE weeks SET current_week = 0 WHERE current_week = 1`); err != nil {
			return err
		}
		res, err := tx.q.ExecContext(ctx, `UPDATE weeks SET current_week = 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *Store) writeWeekSongs(ctx context.Context, w *domain.ScheduledWeek) error {
	for day, songIDs := range w.Days {
		for pos, songID := range songIDs {
			if _, err := s.q.ExecContext(ctx,
				`INSERT INTO week_songs (week_id, day, song_id, position) VALUES (?, ?, ?, ?)`,
				w.ID, day, songID, pos); err != nil {
				return fmt.Errorf("insert week_songs %s/%s: %w", day, songID, err)
			}
		}
	}
	return nil
}

func (s *Store) loadWeekSongs(ctx context.Context, w *domain.ScheduledWeek) error {
	rows, err := s.q.QueryContext(ctx,
		`SELECT day, song_id FROM week_songs WHERE week_id = ? ORDER BY day, position`, w.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var day, songID string
		if err := rows.Scan(&day, &songID); err != nil {
			return err
		}
		w.Days[day] = append(w.Days[day], songID)
	}
	return rows.Err()
}
