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
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// ScheduleService manages the weekly review calendar.
type ScheduleService struct {
	store  store.Store
	logger *slog.Logger
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(store store.Store, logger *slog.Logger) *ScheduleService {
	return &ScheduleService{store: store, logger: logger}
}

// DayView is one weekday of a week with its songs, newest upload first.
type DayView struct {
	Day   string        `json:"day"`
	Date  time.Time     `json:"date"`
	Songs []*SongDetail `json:"songs"`
}

// WeekView is a resolved week of the schedule.
type WeekView struct {
	Week    *domain.ScheduledWeek `json:"week"`
	Days    []DayView             `json:"days"`
	Summary string                `json:"summary"`
}

// Current returns the week flagged current, or the latest week.
func (s *ScheduleService) Current(ctx context.Context) (*WeekView, error) {
	week, err := s.store.GetCurrentWeek(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("no weeks have been scheduled")
	}
	if err != nil {
		return nil, fmt.Errorf("get current week: %w", err)
	}
	return s.view(ctx, week)
}

// Get returns one week by ID.
func (s *ScheduleService) Get(ctx context.Context, weekID string) (*WeekView, error) {
	week, err := s.store.GetWeek(ctx, weekID)
	if err != nil {
		return nil, storeErr(err, "get week", "week", weekID)
	}
	return s.view(ctx, week)
}

func (s *ScheduleService) view(ctx context.Context, week *domain.ScheduledWeek) (*WeekView, error) {
	var ids []string
	for _, d := range domain.Weekdays() {
		ids = append(ids, week.SongIDs(d)...)
	}
	songs, err := s.store.GetSongsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get scheduled songs: %w", err)
	}

	out := &WeekView{Week: week}
	days := make([]domain.DaySchedule, 0, len(domain.Weekdays()))
	for i, d := range domain.Weekdays() {
		var daySongs []*domain.Song
		for _, songID := range week.SongIDs(d) {
			if song, ok := songs[songID]; ok {
				daySongs = append(daySongs, song)
			}
		}
		domain.SortNewestFirst(daySongs)
		days = append(days, domain.DaySchedule{Day: d, Songs: daySongs})

		view := DayView{
			Day:   domain.DayKey(d),
			Date:  week.WeekBeginning.AddDate(0, 0, i),
			Songs: make([]*SongDetail, 0, len(daySongs)),
		}
		for _, song := range daySongs {
			counted, err := s.store.ListReviewsByStatus(ctx, song.ID, domain.CountedStatuses)
			if err != nil {
				return nil, fmt.Errorf("list counted reviews: %w", err)
			}
			view.Songs = append(view.Songs, &SongDetail{Song: song, Summary: SummarizeSong(song, counted)})
		}
		out.Days = append(out.Days, view)
	}
	out.Summary = domain.WeekSummary(days)
	return out, nil
}

// CreateWeekRequest starts a new week of the schedule.
type CreateWeekRequest struct {
	WeekBeginning time.Time `json:"week_beginning"`
	WeekInfo      string    `json:"week_info,omitempty" validate:"max=2000"`
	Current       bool      `json:"current,omitempty"`
}

// CreateWeek adds a week. Any date is moved back to the Monday of its week.
func (s *ScheduleService) CreateWeek(ctx context.Context, req CreateWeekRequest) (*domain.ScheduledWeek, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.WeekBeginning.IsZero() {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"week_beginning": "is required"})
	}

	weekID, err := id.Week.New()
	if err != nil {
		return nil, fmt.Errorf("generate week ID: %w", err)
	}

	week := &domain.ScheduledWeek{
		ID:            weekID,
		WeekBeginning: domain.MondayOf(req.WeekBeginning.UTC()),
		WeekInfo:      strings.TrimSpace(req.WeekInfo),
		Days:          make(map[string][]string),
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateWeek(ctx, week); err != nil {
			return storeErr(err, "create week", "week beginning", week.WeekBeginning.Format(time.DateOnly))
		}
		if req.Current {
			week.CurrentWeek = true
			return storeErr(tx.SetCurrentWeek(ctx, week.ID), "set current week", "week", week.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("week created", "week_id", week.ID, "week_beginning", week.WeekBeginning.Format(time.DateOnly), "current", week.CurrentWeek)
	return week, nil
}

// SetCurrent makes weekID the only current week.
func (s *ScheduleService) SetCurrent(ctx context.Context, weekID string) error {
	if err := s.store.SetCurrentWeek(ctx, weekID); err != nil {
		return storeErr(err, "set current week", "week", weekID)
	}
	s.logger.Info("current week set", "week_id", weekID)
	return nil
}

// AddSong schedules an open song on a weekday. Adding it twice is a no-op.
func (s *ScheduleService) AddSong(ctx context.Context, weekID, day, songID string) (*domain.ScheduledWeek, error) {
	weekday, err := domain.ParseWeekday(day)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var week *domain.ScheduledWeek
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		week, err = tx.GetWeek(ctx, weekID)
		if err != nil {
			return storeErr(err, "get week", "week", weekID)
		}
		song, err := tx.GetSong(ctx, songID)
		if err != nil {
			return storeErr(err, "get song", "song", songID)
		}
		if song.Status != domain.SongOpen {
			return domainerrors.Conflict(fmt.Sprintf("song %s is %s; only open songs can be scheduled", songID, song.Status))
		}
		if !week.AddSong(weekday, songID) {
			return nil
		}
		return storeErr(tx.UpdateWeek(ctx, week), "update week", "week", weekID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("song scheduled", "week_id", weekID, "day", domain.DayKey(weekday), "song_id", songID)
	return week, nil
}

// RemoveSong unschedules a song from a weekday.
func (s *ScheduleService) RemoveSong(ctx context.Context, weekID, day, songID string) (*domain.ScheduledWeek, error) {
	weekday, err := domain.ParseWeekday(day)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var week *domain.ScheduledWeek
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		week, err = tx.GetWeek(ctx, weekID)
		if err != nil {
			return storeErr(err, "get week", "week", weekID)
		}
		if !week.RemoveSong(weekday, songID) {
			return domainerrors.NotFoundf("song %s is not scheduled on %s", songID, domain.DayKey(weekday))
		}
		return storeErr(tx.UpdateWeek(ctx, week), "update week", "week", weekID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("song unscheduled", "week_id", weekID, "day", domain.DayKey(weekday), "song_id", songID)
	return week, nil
}
