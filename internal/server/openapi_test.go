package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAPISpecBuilds(t *testing.T) {
	spec, err := newOpenAPISpec()
	if err != nil {
		t.Fatalf("expected every operation to register, got %v", err)
	}

	wantParams := map[string][]string{
		"/api/bookings/{code}":                              {"code"},
		"/api/bookings/{code}/answer":                       {"code"},
		"/api/bookings/{code}/skip":                         {"code"},
		"/api/bookings/{code}/events":                       {"code"},
		"/api/admin/games/{gameID}/puzzles":                 {"gameID"},
		"/api/admin/games/{gameID}/puzzles/{puzzleID}/move": {"gameID", "puzzleID"},
		"/api/admin/teams/{teamID}/join":                    {"teamID"},
		"/api/admin/bookings/{code}":                        {"code"},
	}
	for path, names := range wantParams {
		item, ok := spec.Paths.MapOfPathItemValues[path]
		if !ok {
			t.Errorf("expected path %s in document", path)
			continue
		}
		data, err := item.MarshalJSON()
		if err != nil {
			t.Fatalf("encoding %s: %v", path, err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
		checked := 0
		for _, method := range []string{"get", "post", "put", "patch", "delete"} {
			raw, ok := fields[method]
			if !ok {
				continue
			}
			checked++
			var op struct {
				Parameters []struct {
					Name string `json:"name"`
					In   string `json:"in"`
				} `json:"parameters"`
			}
			if err := json.Unmarshal(raw, &op); err != nil {
				t.Fatalf("decoding %s %s: %v", method, path, err)
			}
			got := map[string]bool{}
			for _, p := range op.Parameters {
				if p.In == "path" {
					got[p.Name] = true
				}
			}
			for _, name := range names {
				if !got[name] {
					t.Errorf("%s %s: expected path parameter %q", method, path, name)
				}
			}
		}
		if checked == 0 {
			t.Errorf("%s: expected at least one operation", path)
		}
	}
}

func TestHandleOpenAPI(t *testing.T) {
	h := handleOpenAPI(slog.New(slog.NewTextHandler(io.Discard, nil)))
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("content-type = %q, want application/json", got)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"openapi"`) {
		t.Fatalf("body missing openapi version")
	}
	for _, path := range []string{
		`"/healthz"`,
		`"/api/login"`,
		`"/api/bookings/{code}/answer"`,
		`"/api/bookings/{code}/ws"`,
		`"/api/bookings/{code}/qr"`,
		`"/api/admin/teams/{teamID}/join"`,
		`"/api/admin/games/{gameID}/puzzles/{puzzleID}/move"`,
		`"/api/admin/bookings/{code}"`,
	} {
		if !strings.Contains(body, path) {
			t.Errorf("body missing %s path", path)
		}
	}
}

func TestSwaggerUI(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/html") {
		t.Fatalf("content-type = %q, want text/html", got)
	}
	if !strings.Contains(rec.Body.String(), "/openapi.json") {
		t.Fatalf("body missing /openapi.json")
	}
}
