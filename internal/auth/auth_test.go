// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// newTestDB creates an in-memory BadgerDB for testing.
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// captureMailer records tokens instead of delivering them.
type captureMailer struct {
	verifyToken string
	resetToken  string
}

func (m *captureMailer) SendVerification(_, token string) error {
	m.verifyToken = token
	return nil
}

func (m *captureMailer) SendPasswordReset(_, token string) error {
	m.resetToken = token
	return nil
}

func newTestService(t *testing.T) (*Service, *captureMailer) {
	t.Helper()

	db := newTestDB(t)
	mailer := &captureMailer{}
	svc := NewService(
		NewUserStore(db),
		NewSessionStore(db, time.Hour),
		NewTokenService("test-secret-0123456789abcdef0123456789abcdef", 30*time.Minute),
		mailer,
	)
	return svc, mailer
}

func TestRegisterAndAuthenticate(t *testing.T) {
	users := NewUserStore(newTestDB(t))

	user, err := users.Register("Alice@Example.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}
	if user.Verified {
		t.Error("Expected new account to be unverified")
	}

	if _, err := users.Register("alice@example.com", "Alice II", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}

	got, err := users.Authenticate("alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, got.ID)
	}

	if _, err := users.Authenticate("alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := users.Authenticate("nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	sessions := NewSessionStore(newTestDB(t), time.Hour)

	session, err := sessions.Create("user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(session.ID) != 64 {
		t.Errorf("Expected 64-char session id, got %d chars", len(session.ID))
	}

	got, err := sessions.Get(session.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("Expected user-1, got %q", got.UserID)
	}

	if err := sessions.Delete(session.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := sessions.Get(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}

	// Deleting an unknown session is not an error.
	if err := sessions.Delete("missing"); err != nil {
		t.Errorf("Expected nil for unknown session delete, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	sessions := NewSessionStore(newTestDB(t), -time.Minute)

	session, err := sessions.Create("user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := sessions.Get(session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Expected ErrSessionExpired, got %v", err)
	}
	// The expired session was deleted on access.
	if _, err := sessions.Get(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after expiry cleanup, got %v", err)
	}
}

func TestSessionCleanup(t *testing.T) {
	db := newTestDB(t)
	expired := NewSessionStore(db, -time.Minute)
	active := NewSessionStore(db, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := expired.Create("user-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	keep, err := active.Create("user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := active.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted sessions, got %d", deleted)
	}
	if _, err := active.Get(keep.ID); err != nil {
		t.Errorf("Expected active session to survive cleanup, got %v", err)
	}
}

func TestDeleteUserSessions(t *testing.T) {
	sessions := NewSessionStore(newTestDB(t), time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := sessions.Create("user-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	other, err := sessions.Create("user-2")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	revoked, err := sessions.DeleteUserSessions("user-1")
	if err != nil {
		t.Fatalf("DeleteUserSessions failed: %v", err)
	}
	if revoked != 2 {
		t.Errorf("Expected 2 revoked sessions, got %d", revoked)
	}
	if _, err := sessions.Get(other.ID); err != nil {
		t.Errorf("Expected other user's session to survive, got %v", err)
	}
}

func TestTokenPurposes(t *testing.T) {
	tokens := NewTokenService("test-secret-0123456789abcdef0123456789abcdef", time.Hour)

	token, err := tokens.Issue("user-1", PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	userID, err := tokens.Verify(token, PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Expected user-1, got %q", userID)
	}

	// A token must not be redeemable for a different purpose.
	if _, err := tokens.Verify(token, PurposeResetPassword); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for wrong purpose, got %v", err)
	}

	// Tampering invalidates the signature.
	if _, err := tokens.Verify(token+"x", PurposeVerifyEmail); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for tampered token, got %v", err)
	}

	// Expired tokens are rejected.
	expired := NewTokenService("test-secret-0123456789abcdef0123456789abcdef", -time.Minute)
	token, err = expired.Issue("user-1", PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := expired.Verify(token, PurposeVerifyEmail); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyEmailFlow(t *testing.T) {
	svc, mailer := newTestService(t)

	user, err := svc.Register("bob@example.com", "Bob", "hunter22")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if mailer.verifyToken == "" {
		t.Fatal("Expected verification token to be sent")
	}

	if err := svc.VerifyEmail(mailer.verifyToken); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	got, err := svc.Users().Get(user.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Verified {
		t.Error("Expected account to be verified")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mailer := newTestService(t)

	if _, err := svc.Register("carol@example.com", "Carol", "old password"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, session, err := svc.Login("carol@example.com", "old password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Unknown email must not leak account existence.
	if err := svc.RequestPasswordReset("nobody@example.com"); err != nil {
		t.Errorf("Expected silent success for unknown email, got %v", err)
	}

	if err := svc.RequestPasswordReset("carol@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if mailer.resetToken == "" {
		t.Fatal("Expected reset token to be sent")
	}

	if err := svc.ResetPassword(mailer.resetToken, "new password"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	// Old password rejected, new one works, old session revoked.
	if _, _, err := svc.Login("carol@example.com", "old password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected old password to be rejected, got %v", err)
	}
	if _, _, err := svc.Login("carol@example.com", "new password"); err != nil {
		t.Errorf("Expected new password to work, got %v", err)
	}
	if _, err := svc.Sessions().Get(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected old session to be revoked, got %v", err)
	}
}
