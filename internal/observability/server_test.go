// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func stopServer(t *testing.T, server *Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Stop(ctx)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := NewServer("127.0.0.1:0", func() bool { return true })

	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer stopServer(t, server)

	addr := server.Addr()
	if addr == "" {
		t.Fatal("server address is empty")
	}

	status, body := get(t, "http://"+addr+"/metrics")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if !strings.Contains(body, "# HELP") {
		t.Error("expected Prometheus format with HELP comments")
	}
	if !strings.Contains(body, "go_") {
		t.Error("expected go_* metrics")
	}

	// Custom metrics appear once incremented.
	metrics := server.Metrics()
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	metrics.Registrations.Inc()
	metrics.PasswordResets.Inc()
	metrics.HTTPRequests.WithLabelValues("/login", "2xx").Inc()
	metrics.ObserveActiveSessions(func() int { return 3 })

	_, body = get(t, "http://"+addr+"/metrics")
	for _, want := range []string{
		`cloudprep_login_attempts_total{outcome="success"} 1`,
		"cloudprep_registrations_total 1",
		"cloudprep_password_resets_total 1",
		`cloudprep_http_requests_total{route="/login",status="2xx"} 1`,
		"cloudprep_active_sessions 3",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}

func TestServer_HealthProbes(t *testing.T) {
	ready := false
	server := NewServer("127.0.0.1:0", func() bool { return ready })

	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer stopServer(t, server)

	addr := server.Addr()

	status, _ := get(t, "http://"+addr+"/healthz/liveness")
	if status != http.StatusOK {
		t.Errorf("liveness: expected status 200, got %d", status)
	}

	status, _ = get(t, "http://"+addr+"/healthz/readiness")
	if status != http.StatusServiceUnavailable {
		t.Errorf("readiness before ready: expected status 503, got %d", status)
	}

	ready = true
	status, _ = get(t, "http://"+addr+"/healthz/readiness")
	if status != http.StatusOK {
		t.Errorf("readiness after ready: expected status 200, got %d", status)
	}
}

func TestServer_DoubleStart(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)

	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer stopServer(t, server)

	if _, err := server.Start(); err == nil {
		t.Error("expected second Start to fail")
	}
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Errorf("expected Stop on non-running server to be a no-op, got %v", err)
	}
}
