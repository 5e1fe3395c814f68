// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/cloudprep/cloudprep/internal/auth"
	"github.com/cloudprep/cloudprep/internal/session"
	"github.com/cloudprep/cloudprep/pkg/errutil"
)

// Form feedback shown to visitors. The wording is part of the user-facing
// contract and is matched by tests.
const (
	msgAllFieldsRequired    = "All fields are required."
	msgEmailRegistered      = "Email already registered. Please log in."
	msgEmailPasswordReq     = "Email and password are required."
	msgInvalidCredentials   = "Invalid email or password."
	msgEmailRequired        = "Email is required."
	msgEmailNotFound        = "Email not found."
	msgNewPasswordRequired  = "New password is required."
	msgPasswordTooShort     = "Password must be at least 6 characters."
	msgResetUpdateFailed    = "Failed to update password. Please try again."
	msgDatabaseError        = "Database error. Please try again later."
)

// pageData builds the base template context for the current visitor.
func pageData(r *http.Request, title string) PageData {
	data := PageData{Title: title}
	if sess := session.FromContext(r.Context()); sess != nil && sess.IsAuthenticated() {
		data.UserLoggedIn = true
		data.UserEmail = sess.UserEmail
	}
	return data
}

// render writes a page, falling back to a plain 500 if the template fails.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	if err := s.renderer.Render(w, status, page, data); err != nil {
		errutil.LogError(s.logger, "render failed", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// saveSession writes a mutated session back to the store.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.logger.ErrorContext(r.Context(), "session save failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "landing", pageData(r, "CloudPrep"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "notfound", pageData(r, "Not Found"))
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", pageData(r, "Register"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	fail := func(msg string) {
		data := pageData(r, "Register")
		data.Message = msg
		data.Category = "error"
		s.render(w, r, http.StatusOK, "register", data)
	}

	if name == "" || email == "" || password == "" {
		fail(msgAllFieldsRequired)
		return
	}

	_, err := s.auth.Register(ctx, name, email, password)
	switch {
	case err == nil:
		s.metrics.Registrations.Inc()
		http.Redirect(w, r, "/welcome", http.StatusSeeOther)
	case errors.Is(err, auth.ErrEmailTaken):
		fail(msgEmailRegistered)
	case errors.Is(err, auth.ErrValidation):
		fail(msgAllFieldsRequired)
	default:
		errutil.LogError(s.logger, "registration failed", err)
		fail(msgDatabaseError)
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", pageData(r, "Log in"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := r.FormValue("email")
	password := r.FormValue("password")

	fail := func(msg string) {
		data := pageData(r, "Log in")
		data.Message = msg
		data.Category = "error"
		s.render(w, r, http.StatusOK, "login", data)
	}

	if email == "" || password == "" {
		fail(msgEmailPasswordReq)
		return
	}

	user, err := s.auth.Login(ctx, email, password)
	switch {
	case err == nil:
		sess := session.FromContext(ctx)
		sess.Authenticate(user.Email, user.ID)
		if !s.saveSession(w, r, sess) {
			return
		}
		s.metrics.LoginAttempts.WithLabelValues("success").Inc()
		http.Redirect(w, r, "/welcome", http.StatusSeeOther)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrValidation):
		s.metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		fail(msgInvalidCredentials)
	default:
		s.metrics.LoginAttempts.WithLabelValues("error").Inc()
		errutil.LogError(s.logger, "login failed", err)
		fail(msgDatabaseError)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	sess.Clear()
	if !s.saveSession(w, r, sess) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "welcome", pageData(r, "Welcome"))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "dashboard", pageData(r, "Dashboard"))
}

func (s *Server) handleForgotForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "forgot", pageData(r, "Forgot Password"))
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := r.FormValue("email")

	fail := func(msg string) {
		data := pageData(r, "Forgot Password")
		data.Message = msg
		data.Category = "error"
		s.render(w, r, http.StatusOK, "forgot", data)
	}

	if email == "" {
		fail(msgEmailRequired)
		return
	}

	err := s.resets.RequestReset(ctx, email)
	switch {
	case err == nil:
		sess := session.FromContext(ctx)
		sess.ResetEmail = email
		if !s.saveSession(w, r, sess) {
			return
		}
		http.Redirect(w, r, "/reset", http.StatusSeeOther)
	case errors.Is(err, auth.ErrNotFound):
		fail(msgEmailNotFound)
	case errors.Is(err, auth.ErrValidation):
		fail(msgEmailRequired)
	default:
		errutil.LogError(s.logger, "reset request failed", err)
		fail(msgDatabaseError)
	}
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "reset", pageData(r, "Reset Password"))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	newPassword := r.FormValue("new_password")

	fail := func(msg string) {
		data := pageData(r, "Reset Password")
		data.Message = msg
		data.Category = "error"
		s.render(w, r, http.StatusOK, "reset", data)
	}

	// Validation failures re-render the form with the session's reset
	// intent intact, so the visitor can try again without redoing phase 1.
	if newPassword == "" {
		fail(msgNewPasswordRequired)
		return
	}
	if len(newPassword) < auth.MinPasswordLength {
		fail(msgPasswordTooShort)
		return
	}

	sess := session.FromContext(ctx)
	err := s.resets.PerformReset(ctx, sess.ResetEmail, newPassword)
	switch {
	case err == nil:
		sess.ResetEmail = ""
		if !s.saveSession(w, r, sess) {
			return
		}
		s.metrics.PasswordResets.Inc()
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, auth.ErrUpdateFailed):
		fail(msgResetUpdateFailed)
	case errors.Is(err, auth.ErrValidation):
		fail(msgPasswordTooShort)
	default:
		errutil.LogError(s.logger, "reset failed", err)
		fail(msgDatabaseError)
	}
}

func (s *Server) handleTutorials(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "tutorials", pageData(r, "Tutorials"))
}

// tutorialTopics is the fixed set of published tutorial tracks.
var tutorialTopics = map[string]string{
	"ec2":    "EC2",
	"s3":     "S3",
	"lambda": "Lambda",
}

func (s *Server) handleTutorialTopic(w http.ResponseWriter, r *http.Request) {
	title, ok := tutorialTopics[r.PathValue("topic")]
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	data := pageData(r, title)
	data.Topic = title
	s.render(w, r, http.StatusOK, "tutorial_topic", data)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "news", pageData(r, "News"))
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "contact", pageData(r, "Contact"))
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about", pageData(r, "About"))
}
