package kv

import (
	"context"
	"testing"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSession(id, writerID, token string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		WriterID:         writerID,
		RefreshTokenHash: token,
		ExpiresAt:        now.Add(24 * time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
		UserAgent:        "jukeboxctl/1.0",
	}
}

func TestCreateSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := newSession("sess-1", "wri-1", "hash-1")
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "wri-1", got.WriterID)
	assert.Equal(t, "hash-1", got.RefreshTokenHash)
	assert.Equal(t, "jukeboxctl/1.0", got.UserAgent)
}

func TestCreateSession_DuplicateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("sess-1", "wri-1", "hash-1")))

	err := s.CreateSession(ctx, newSession("sess-1", "wri-1", "hash-2"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateSession_AlreadyExpired(t *testing.T) {
	s := setupTestStore(t)

	session := newSession("sess-1", "wri-1", "hash-1")
	session.ExpiresAt = time.Now().Add(-time.Minute)

	err := s.CreateSession(context.Background(), session)
	assert.ErrorIs(t, err, store.ErrSessionExpired)
}

func TestGetSession_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestUpdateSession_RotatesToken(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := newSession("sess-1", "wri-1", "hash-old")
	require.NoError(t, s.CreateSession(ctx, session))

	session.RefreshTokenHash = "hash-new"
	session.Touch()
	require.NoError(t, s.UpdateSession(ctx, session))

	_, err := s.GetSessionByRefreshToken(ctx, "hash-old")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	got, err := s.GetSessionByRefreshToken(ctx, "hash-new")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)
}

func TestDeleteSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("sess-1", "wri-1", "hash-1")))
	require.NoError(t, s.DeleteSession(ctx, "sess-1"))

	_, err := s.GetSession(ctx, "sess-1")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	_, err = s.GetSessionByRefreshToken(ctx, "hash-1")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	// Deleting twice is fine.
	assert.NoError(t, s.DeleteSession(ctx, "sess-1"))
}

func TestListAndDeleteWriterSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("sess-1", "wri-1", "hash-1")))
	require.NoError(t, s.CreateSession(ctx, newSession("sess-2", "wri-1", "hash-2")))
	require.NoError(t, s.CreateSession(ctx, newSession("sess-3", "wri-2", "hash-3")))

	sessions, err := s.ListWriterSessions(ctx, "wri-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, s.DeleteWriterSessions(ctx, "wri-1"))

	sessions, err = s.ListWriterSessions(ctx, "wri-1")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	other, err := s.ListWriterSessions(ctx, "wri-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestOpenInMemory(t *testing.T) {
	s, err := OpenInMemory(nil)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.RunGC())
}
