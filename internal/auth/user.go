// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package auth implements account management and request authentication:
// bcrypt-hashed user accounts, server-side sessions persisted in BadgerDB,
// and signed single-purpose tokens for email verification and password
// resets.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/polyloc/polyloc/internal/logging"
)

const (
	userKeyPrefix      = "user:"
	userEmailKeyPrefix = "user_email:"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// bcryptCost balances hashing time against login latency.
const bcryptCost = 12

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PasswordHash []byte `json:"passwordHash"`
	Verified     bool   `json:"verified"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// UserStore persists accounts in BadgerDB under the user: prefix with an
// email index for login lookups.
type UserStore struct {
	db *badger.DB
}

// NewUserStore creates a user store on the given database.
func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

func userKey(id string) []byte {
	return []byte(userKeyPrefix + id)
}

func userEmailKey(email string) []byte {
	return []byte(userEmailKeyPrefix + normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with a bcrypt-hashed password. The email
// must not already be registered.
func (s *UserStore) Register(email, displayName, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ts := nowMillis()
	user := &User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(userEmailKey(user.Email))
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email: %w", err)
		}
		return setUserTxn(txn, user)
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

func setUserTxn(txn *badger.Txn, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := txn.Set(userKey(user.ID), data); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	if err := txn.Set(userEmailKey(user.Email), []byte(user.ID)); err != nil {
		return fmt.Errorf("set email index: %w", err)
	}
	return nil
}

func getUserTxn(txn *badger.Txn, id string) (*User, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	var user User
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

// Get returns the user with the given id.
func (s *UserStore) Get(id string) (*User, error) {
	var user *User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUserTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail returns the user registered under the given email.
func (s *UserStore) GetByEmail(email string) (*User, error) {
	var user *User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get email index: %w", err)
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return fmt.Errorf("read email index: %w", err)
		}
		user, err = getUserTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email and password, returning ErrInvalidCredentials
// for unknown emails and wrong passwords alike so responses cannot be used
// to enumerate accounts.
func (s *UserStore) Authenticate(email, password string) (*User, error) {
	user, err := s.GetByEmail(email)
	if errors.Is(err, ErrUserNotFound) {
		// Burn comparable time so timing does not reveal whether the
		// email exists.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("polyloc-dummy"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}()

// SetVerified marks the account's email as verified.
func (s *UserStore) SetVerified(id string) error {
	return s.mutate(id, func(user *User) error {
		user.Verified = true
		return nil
	})
}

// UpdatePassword replaces the stored password hash.
func (s *UserStore) UpdatePassword(id, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.mutate(id, func(user *User) error {
		user.PasswordHash = hash
		return nil
	})
}

func (s *UserStore) mutate(id string, fn func(*User) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		user, err := getUserTxn(txn, id)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		user.UpdatedAt = nowMillis()
		return setUserTxn(txn, user)
	})
}
