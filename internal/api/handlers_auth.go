// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package api

import (
	"net/http"

	"github.com/polyloc/polyloc/internal/auth"
)

// userResponse is the public view of an account.
type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Verified    bool   `json:"verified"`
}

func toUserResponse(user *auth.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Verified:    user.Verified,
	}
}

func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.auth.Register(req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, session, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	http.SetCookie(w, s.sessionCookie(session.ID, int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())))
	WriteSuccess(w, r, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		if err := s.auth.Logout(cookie.Value); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	http.SetCookie(w, s.sessionCookie("", -1))
	WriteSuccess(w, r, http.StatusOK, map[string]bool{"loggedOut": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Users().Get(userID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.VerifyEmail(req.Token); err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, map[string]bool{"verified": true})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.RequestPasswordReset(req.Email); err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, map[string]bool{"sent": true})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.ResetPassword(req.Token, req.Password); err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, map[string]bool{"reset": true})
}
