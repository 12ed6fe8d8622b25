package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

var _ store.SessionStore = (*Store)(nil)

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

func tokenKey(hash string) []byte {
	return []byte(sessionByTokenPrefix + hash)
}

func writerIndexKey(writerID, sessionID string) []byte {
	return []byte(sessionByWriterPrefix + writerID + ":" + sessionID)
}

// ttl is how long Badger keeps the session's entries. Expired sessions
// disappear without a cleanup job.
func ttl(session *domain.Session) time.Duration {
	return time.Until(session.ExpiresAt)
}

// setSession writes the session and its indexes, all expiring with it.
func setSession(txn *badger.Txn, session *domain.Session) error {
	d := ttl(session)
	if d <= 0 {
		return store.ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := txn.SetEntry(badger.NewEntry(sessionKey(session.ID), data).WithTTL(d)); err != nil {
		return err
	}
	if err := txn.SetEntry(badger.NewEntry(tokenKey(session.RefreshTokenHash), []byte(session.ID)).WithTTL(d)); err != nil {
		return err
	}
	return txn.SetEntry(badger.NewEntry(writerIndexKey(session.WriterID, session.ID), nil).WithTTL(d))
}

// CreateSession stores a new login session.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	exists, err := s.exists(sessionKey(session.ID))
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return store.ErrAlreadyExists.WithCause(errors.New("session already exists"))
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return setSession(txn, session)
	})
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := s.get(sessionKey(id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	// TTL expiry is coarse; the timestamp is authoritative.
	if session.IsExpired() {
		return nil, store.ErrSessionExpired
	}
	return &session, nil
}

// GetSessionByRefreshToken retrieves a session by its refresh token hash.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(tokenHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session by token: %w", err)
	}

	return s.GetSession(ctx, sessionID)
}

// UpdateSession saves a session after token rotation or a last-seen bump.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	old, err := s.GetSession(ctx, session.ID)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if old.RefreshTokenHash != session.RefreshTokenHash {
			if err := txn.Delete(tokenKey(old.RefreshTokenHash)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return setSession(txn, session)
	})
}

// DeleteSession removes a session (logout). Deleting a missing session is not an error.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	var session domain.Session
	if err := s.get(sessionKey(id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("get session for deletion: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range [][]byte{
			sessionKey(id),
			tokenKey(session.RefreshTokenHash),
			writerIndexKey(session.WriterID, id),
		} {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
}

// ListWriterSessions returns a writer's live sessions.
func (s *Store) ListWriterSessions(ctx context.Context, writerID string) ([]*domain.Session, error) {
	prefix := []byte(sessionByWriterPrefix + writerID + ":")

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // keys only

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list writer sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.GetSession(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrSessionExpired) || errors.Is(err, store.ErrSessionNotFound) {
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// DeleteWriterSessions removes every session of a writer, used after a
// password change.
func (s *Store) DeleteWriterSessions(ctx context.Context, writerID string) error {
	sessions, err := s.ListWriterSessions(ctx, writerID)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := s.DeleteSession(ctx, session.ID); err != nil {
			return fmt.Errorf("delete session %s: %w", session.ID, err)
		}
	}
	return nil
}
