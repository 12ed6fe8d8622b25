package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

func TestWeeks_CreateGetUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeSong(t, s, "song-1", domain.SongOpen)
	makeSong(t, s, "song-2", domain.SongOpen)

	w := &domain.ScheduledWeek{ID: "week-1", WeekBeginning: baseTime, WeekInfo: "Holiday week"}
	w.AddSong(time.Monday, "song-1")
	w.AddSong(time.Monday, "song-2")
	if err := s.CreateWeek(ctx, w); err != nil {
		t.Fatalf("CreateWeek: %v", err)
	}

	got, err := s.GetWeek(ctx, "week-1")
	if err != nil {
		t.Fatalf("GetWeek: %v", err)
	}
	monday := got.SongIDs(time.Monday)
	if len(monday) != 2 || monday[0] != "song-1" || monday[1] != "song-2" {
		t.Errorf("monday: got %v", monday)
	}
	if got.WeekInfo != "Holiday week" || !got.WeekBeginning.Equal(baseTime) {
		t.Errorf("GetWeek: got %+v", got)
	}

	got.RemoveSong(time.Monday, "song-1")
	got.AddSong(time.Friday, "song-1")
	got.WeekInfo = ""
	if err := s.UpdateWeek(ctx, got); err != nil {
		t.Fatalf("UpdateWeek: %v", err)
	}

	again, err := s.GetWeek(ctx, "week-1")
	if err != nil {
		t.Fatalf("GetWeek: %v", err)
	}
	if m := again.SongIDs(time.Monday); len(m) != 1 || m[0] != "song-2" {
		t.Errorf("monday after update: got %v", m)
	}
	if f := again.SongIDs(time.Friday); len(f) != 1 || f[0] != "song-1" {
		t.Errorf("friday after update: got %v", f)
	}

	dup := &domain.ScheduledWeek{ID: "week-dup", WeekBeginning: baseTime}
	if err := s.CreateWeek(ctx, dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate week: got %v, want ErrAlreadyExists", err)
	}
}

func TestWeeks_CurrentWeek(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetCurrentWeek(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetCurrentWeek empty: got %v, want ErrNotFound", err)
	}

	for i, id := range []string{"week-1", "week-2", "week-3"} {
		w := &domain.ScheduledWeek{ID: id, WeekBeginning: baseTime.AddDate(0, 0, 7*i)}
		if err := s.CreateWeek(ctx, w); err != nil {
			t.Fatalf("CreateWeek(%s): %v", id, err)
		}
	}

	latest, err := s.GetCurrentWeek(ctx)
	if err != nil {
		t.Fatalf("GetCurrentWeek: %v", err)
	}
	if latest.ID != "week-3" {
		t.Errorf("fallback: got %q, want week-3", latest.ID)
	}

	if err := s.SetCurrentWeek(ctx, "week-1"); err != nil {
		t.Fatalf("SetCurrentWeek: %v", err)
	}
	if err := s.SetCurrentWeek(ctx, "week-2"); err != nil {
		t.Fatalf("SetCurrentWeek: %v", err)
	}

	current, err := s.GetCurrentWeek(ctx)
	if err != nil {
		t.Fatalf("GetCurrentWeek: %v", err)
	}
	if current.ID != "week-2" || !current.CurrentWeek {
		t.Errorf("current: got %+v", current)
	}

	weeks, err := s.ListWeeks(ctx)
	if err != nil {
		t.Fatalf("ListWeeks: %v", err)
	}
	flagged := 0
	for _, w := range weeks {
		if w.CurrentWeek {
			flagged++
		}
	}
	if len(weeks) != 3 || flagged != 1 {
		t.Errorf("ListWeeks: got %d weeks with %d flagged", len(weeks), flagged)
	}

	if err := s.SetCurrentWeek(ctx, "week-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SetCurrentWeek missing: got %v, want ErrNotFound", err)
	}
}
