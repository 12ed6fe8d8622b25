package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/singlesjukebox/jukebox-server/internal/store"
)

func TestWriters_CreateGetUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := makeWriter(t, s, "wri-1")

	got, err := s.GetWriter(ctx, "wri-1")
	if err != nil {
		t.Fatalf("GetWriter: %v", err)
	}
	if got.Username != w.Username || got.Email != w.Email || !got.DateJoined.Equal(baseTime) {
		t.Errorf("GetWriter: got %+v", got)
	}
	if got.BioLink != "" {
		t.Errorf("BioLink: got %q, want empty", got.BioLink)
	}

	got.BioLink = "https://example.com/wri-1"
	got.IsStaff = true
	if err := s.UpdateWriter(ctx, got); err != nil {
		t.Fatalf("UpdateWriter: %v", err)
	}

	again, err := s.GetWriterByUsername(ctx, "WRI-1")
	if err != nil {
		t.Fatalf("GetWriterByUsername: %v", err)
	}
	if again.BioLink != "https://example.com/wri-1" || !again.IsStaff {
		t.Errorf("after update: got %+v", again)
	}

	if _, err := s.GetWriter(ctx, "wri-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetWriter missing: got %v, want ErrNotFound", err)
	}
}

func TestWriters_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := makeWriter(t, s, "wri-1")
	dup := *w
	dup.ID = "wri-2"
	if err := s.CreateWriter(ctx, &dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("CreateWriter duplicate: got %v, want ErrAlreadyExists", err)
	}
}

func TestWriters_ListsAndLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeWriter(t, s, "wri-b")
	admin := makeWriter(t, s, "wri-a")
	admin.IsAdmin = true
	if err := s.UpdateWriter(ctx, admin); err != nil {
		t.Fatalf("UpdateWriter: %v", err)
	}
	retired := makeWriter(t, s, "wri-c")
	retired.IsAdmin = true
	retired.IsActive = false
	if err := s.UpdateWriter(ctx, retired); err != nil {
		t.Fatalf("UpdateWriter: %v", err)
	}

	all, err := s.ListWriters(ctx)
	if err != nil {
		t.Fatalf("ListWriters: %v", err)
	}
	if len(all) != 3 || all[0].ID != "wri-a" || all[2].ID != "wri-c" {
		t.Errorf("ListWriters order: got %d writers, first %v", len(all), all)
	}

	admins, err := s.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if len(admins) != 1 || admins[0].ID != "wri-a" {
		t.Errorf("ListAdmins: got %v, want only wri-a", admins)
	}

	byID, err := s.GetWritersByIDs(ctx, []string{"wri-b", "wri-missing"})
	if err != nil {
		t.Fatalf("GetWritersByIDs: %v", err)
	}
	if len(byID) != 1 || byID["wri-b"] == nil {
		t.Errorf("GetWritersByIDs: got %v", byID)
	}

	empty, err := s.GetWritersByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetWritersByIDs(nil): got %v, %v", empty, err)
	}
}
