package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/playperu/puzzlehunt/internal/handler/health"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type probeResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
}

func probe(t *testing.T, h *health.Handler) (int, map[string]probeResult) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]probeResult
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return rec.Code, body
}

func failing(msg string) health.Checker {
	return health.CheckFunc(func(context.Context) error { return errors.New(msg) })
}

var passing = health.CheckFunc(func(context.Context) error { return nil })

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantDown   []string
	}{
		{
			name:       "sqlite only",
			checks:     map[string]health.Checker{"sqlite": passing},
			wantStatus: http.StatusOK,
		},
		{
			name:       "sqlite and feed up",
			checks:     map[string]health.Checker{"sqlite": passing, "redis": passing},
			wantStatus: http.StatusOK,
		},
		{
			name:       "feed unreachable",
			checks:     map[string]health.Checker{"sqlite": passing, "redis": failing("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantDown:   []string{"redis"},
		},
		{
			name:       "database locked",
			checks:     map[string]health.Checker{"sqlite": failing("database is locked"), "redis": passing},
			wantStatus: http.StatusServiceUnavailable,
			wantDown:   []string{"sqlite"},
		},
		{
			name:       "no checks",
			checks:     map[string]health.Checker{},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := probe(t, health.NewHandler(discard, tt.checks))

			if code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, code)
			}
			if len(body) != len(tt.checks) {
				t.Errorf("expected %d results, got %d", len(tt.checks), len(body))
			}
			for name, res := range body {
				want := "ok"
				if slices.Contains(tt.wantDown, name) {
					want = "error"
				}
				if res.Status != want {
					t.Errorf("%s: expected %q, got %q", name, want, res.Status)
				}
			}
		})
	}
}

func TestHandlerTimeout(t *testing.T) {
	slow := health.CheckFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	h := health.NewHandler(discard, map[string]health.Checker{
		"sqlite": passing,
		"redis":  slow,
	}).WithTimeout(50 * time.Millisecond)

	start := time.Now()
	code, body := probe(t, h)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("expected probe to give up after the timeout, took %v", elapsed)
	}
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if body["redis"].Status != "error" || body["sqlite"].Status != "ok" {
		t.Errorf("unexpected results %+v", body)
	}
	if body["redis"].LatencyMS < 50 {
		t.Errorf("expected redis latency of at least 50ms, got %d", body["redis"].LatencyMS)
	}
}
