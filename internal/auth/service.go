// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package auth

import (
	"errors"
	"fmt"

	"github.com/polyloc/polyloc/internal/logging"
)

// Service ties the account stores, sessions, tokens and mail delivery into
// the account lifecycle flows.
type Service struct {
	users    *UserStore
	sessions *SessionStore
	tokens   *TokenService
	mailer   Mailer
}

// NewService wires up the auth service.
func NewService(users *UserStore, sessions *SessionStore, tokens *TokenService, mailer Mailer) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens, mailer: mailer}
}

// Users exposes the underlying user store.
func (s *Service) Users() *UserStore { return s.users }

// Sessions exposes the underlying session store.
func (s *Service) Sessions() *SessionStore { return s.sessions }

// Register creates an account and sends the verification email.
func (s *Service) Register(email, displayName, password string) (*User, error) {
	user, err := s.users.Register(email, displayName, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, PurposeVerifyEmail)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}
	if err := s.mailer.SendVerification(user.Email, token); err != nil {
		// The account exists either way; verification can be re-requested.
		logging.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send verification email")
	}
	return user, nil
}

// Login authenticates and opens a session.
func (s *Service) Login(email, password string) (*User, *Session, error) {
	user, err := s.users.Authenticate(email, password)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.sessions.Create(user.ID)
	if err != nil {
		return nil, nil, err
	}
	logging.Info().Str("user_id", user.ID).Msg("User logged in")
	return user, session, nil
}

// Logout closes one session. Unknown session ids are not an error.
func (s *Service) Logout(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// VerifyEmail redeems a verification token.
func (s *Service) VerifyEmail(token string) error {
	userID, err := s.tokens.Verify(token, PurposeVerifyEmail)
	if err != nil {
		return err
	}
	return s.users.SetVerified(userID)
}

// RequestPasswordReset sends a reset token to the account's email. Unknown
// emails succeed silently so the endpoint cannot be used to enumerate
// accounts.
func (s *Service) RequestPasswordReset(email string) error {
	user, err := s.users.GetByEmail(email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(user.ID, PurposeResetPassword)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	return s.mailer.SendPasswordReset(user.Email, token)
}

// ResetPassword redeems a reset token, replaces the password and revokes
// every open session of the account.
func (s *Service) ResetPassword(token, newPassword string) error {
	userID, err := s.tokens.Verify(token, PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(userID, newPassword); err != nil {
		return err
	}

	revoked, err := s.sessions.DeleteUserSessions(userID)
	if err != nil {
		return err
	}
	logging.Info().Str("user_id", userID).Int("sessions_revoked", revoked).Msg("Password reset")
	return nil
}
