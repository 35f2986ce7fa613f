// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/polyloc/polyloc/internal/logging"
)

const (
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session is one authenticated browser session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore persists sessions in BadgerDB with a per-user index so all
// of a user's sessions can be revoked at once.
type SessionStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewSessionStore creates a session store with the given session lifetime.
func NewSessionStore(db *badger.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl}
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

func sessionUserKey(userID, id string) []byte {
	return []byte(sessionUserKeyPrefix + userID + ":" + id)
}

// newSessionID returns a 256-bit random hex token.
func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create starts a new session for the user.
func (s *SessionStore) Create(userID string) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sessionKey(id), data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		if err := txn.Set(sessionUserKey(userID, id), []byte(id)); err != nil {
			return fmt.Errorf("set session index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns the session if it exists and has not expired. Expired
// sessions are deleted on sight.
func (s *SessionStore) Get(id string) (*Session, error) {
	var session Session

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.Delete(id); err != nil {
			logging.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Delete removes one session.
func (s *SessionStore) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		var session Session
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		}); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}

		if err := txn.Delete(sessionKey(id)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if err := txn.Delete(sessionUserKey(session.UserID, id)); err != nil {
			return fmt.Errorf("delete session index: %w", err)
		}
		return nil
	})
}

// DeleteUserSessions revokes every session of one user, e.g. after a
// password reset.
func (s *SessionStore) DeleteUserSessions(userID string) (int, error) {
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(sessionUserKeyPrefix + userID + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return fmt.Errorf("read session index: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.Delete(id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// Cleanup removes all expired sessions and returns how many were deleted.
func (s *SessionStore) Cleanup() (int, error) {
	var expired []string
	cutoff := time.Now()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(sessionKeyPrefix)
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				return fmt.Errorf("unmarshal session: %w", err)
			}
			if cutoff.After(session.ExpiresAt) {
				expired = append(expired, session.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range expired {
		if err := s.Delete(id); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
