package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/puzzlehunt/internal/database"
	"github.com/playperu/puzzlehunt/internal/migrations"
	"github.com/playperu/puzzlehunt/internal/progress"
)

const (
	testAdminEmail    = "admin@playperu.com"
	testAdminPassword = "changeme"
)

// demoAnswers are the answers to the demo game's puzzles in order.
var demoAnswers = []string{"1625", "b", "pileta-1651", "San Martin"}

type testEnv struct {
	store   *SQLiteStore
	feed    *Broker
	handler http.Handler
	code    string
}

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	return openTestStore(t, ":memory:")
}

// openTestStore migrates a database at path and creates the test admin.
func openTestStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := NewSQLiteStore(db)
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := store.EnsureAdmin(ctx, testAdminEmail, string(hash)); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return store
}

func newTestEnv(t *testing.T, opts ...progress.Option) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := setupTestStore(t)
	if err := SeedDemo(ctx, logger, store); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	bookings, err := store.ListBookings(ctx)
	if err != nil || len(bookings) != 1 {
		t.Fatalf("expected 1 seeded booking, got %d (%v)", len(bookings), err)
	}

	feed := NewBroker()
	opts = append([]progress.Option{progress.WithPublisher(feed), progress.WithLogger(logger)}, opts...)
	svc := progress.New(store, opts...)

	srv := New("", logger, Deps{
		Service:   svc,
		Admin:     store,
		Directory: store,
		Feed:      feed,
	})

	return &testEnv{
		store:   store,
		feed:    feed,
		handler: srv.Handler(),
		code:    bookings[0].Code,
	}
}

// do sends a JSON request through the full router.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) loginAdmin(t *testing.T) []*http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/admin/login", AdminLoginRequest{Email: testAdminEmail, Password: testAdminPassword}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func (e *testEnv) login(t *testing.T) LoginResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", LoginRequest{Code: e.code}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return v
}

func strPtr(s string) *string { return &s }
