// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package auth

import (
	"github.com/polyloc/polyloc/internal/logging"
)

// Mailer delivers account lifecycle messages. The production deployment
// plugs in a real delivery backend; the default implementation only logs,
// which is enough for development and keeps the flows testable.
type Mailer interface {
	SendVerification(email, token string) error
	SendPasswordReset(email, token string) error
}

// LogMailer writes would-be emails to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) SendVerification(email, token string) error {
	logging.Info().
		Str("email", email).
		Str("token", token).
		Msg("Email verification requested")
	return nil
}

func (LogMailer) SendPasswordReset(email, token string) error {
	logging.Info().
		Str("email", email).
		Str("token", token).
		Msg("Password reset requested")
	return nil
}
