// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cloudprep/cloudprep/internal/logging"
	"github.com/cloudprep/cloudprep/internal/session"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// withRequestID assigns each request a correlation ID, exposed both in the
// logging context and the X-Request-ID response header.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// withLogging logs each handled request and feeds the request counter. The
// route label is the matched mux pattern, not the raw path, to keep
// cardinality bounded.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequests.WithLabelValues(route, statusClass(rec.status)).Inc()
		s.logger.InfoContext(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// statusClass reduces a status code to its class ("2xx", "3xx", ...).
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// withSession resolves the visitor's session from the cookie, creating a new
// session (and setting the cookie) on first contact or after expiry. The
// session travels on the request context; handlers that mutate it write it
// back through the store.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var sess *session.Session
		if cookie, err := r.Cookie(s.cookieName); err == nil {
			if got, err := s.sessions.Get(ctx, cookie.Value); err == nil {
				sess = got
			}
		}

		if sess == nil {
			created, token, err := s.sessions.Create(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "session create failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			sess = created
			http.SetCookie(w, &http.Cookie{
				Name:     s.cookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(ctx, sess)))
	})
}

// requireUser gates a handler on an authenticated session. Anonymous
// visitors are redirected to the login page.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.IsAuthenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireResetIntent gates the reset-completion step on a session that
// carries a verified reset email from the request step.
func (s *Server) requireResetIntent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.HasResetIntent() {
			http.Redirect(w, r, "/forgot", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
