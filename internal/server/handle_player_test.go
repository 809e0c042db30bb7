package server

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

func TestLoginCreatesInstance(t *testing.T) {
	env := newTestEnv(t)

	resp := env.login(t)
	if !resp.Success {
		t.Fatal("expected success=true")
	}
	if resp.GameInstance == nil {
		t.Fatal("expected a game instance")
	}
	if got := resp.GameInstance.CurrentPuzzleOrder; got == nil || *got != 1 {
		t.Errorf("expected current order 1, got %v", got)
	}
	if resp.Team.Name != "Los Incas" {
		t.Errorf("expected team 'Los Incas', got %q", resp.Team.Name)
	}
	if len(resp.Booking.Game.Puzzles) != len(demoAnswers) {
		t.Fatalf("expected %d puzzles, got %d", len(demoAnswers), len(resp.Booking.Game.Puzzles))
	}

	// A second login resumes the same instance.
	again := env.login(t)
	if again.GameInstance.ID != resp.GameInstance.ID {
		t.Errorf("expected instance %s, got %s", resp.GameInstance.ID, again.GameInstance.ID)
	}
}

func TestLoginLowercaseCode(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/login", LoginRequest{Code: strings.ToLower(env.code)}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		code    string
		status  int
		errCode string
	}{
		{"malformed", "AB-1", http.StatusBadRequest, "INVALID_CODE_FORMAT"},
		{"unknown", "ZZZ999", http.StatusNotFound, "BOOKING_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/login", LoginRequest{Code: tt.code}, nil)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			resp := decode[ErrorResponse](t, w)
			if resp.Code != tt.errCode {
				t.Errorf("expected code %s, got %s", tt.errCode, resp.Code)
			}
		})
	}
}

func TestLoginExpiredBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bookings, _ := env.store.ListBookings(ctx)
	b := bookings[0]
	past := time.Now().Add(-time.Hour)
	if _, err := env.store.UpdateBooking(ctx, b.Code, AdminBookingRequest{
		TeamID:    b.TeamID,
		GameID:    b.GameID,
		ExpiresAt: &past,
	}); err != nil {
		t.Fatalf("update booking: %v", err)
	}

	w := env.do(t, http.MethodPost, "/api/login", LoginRequest{Code: env.code}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decode[ErrorResponse](t, w); resp.Code != "BOOKING_EXPIRED" {
		t.Errorf("expected BOOKING_EXPIRED, got %s", resp.Code)
	}

	// No instance must have been created.
	agg, err := env.store.Booking(ctx, env.code)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if agg.Instance != nil {
		t.Error("expected no instance for expired booking")
	}
}

func TestGetBookingHidesAnswers(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/bookings/"+env.code, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if strings.Contains(body, `"answer"`) {
		t.Errorf("booking response leaks answers: %s", body)
	}
	if !strings.Contains(body, `"instance":null`) {
		t.Errorf("expected null instance before login: %s", body)
	}
}

func TestAnswerFlow(t *testing.T) {
	env := newTestEnv(t)
	puzzles := env.login(t).Booking.Game.Puzzles
	path := "/api/bookings/" + env.code + "/answer"

	// Wrong answer.
	w := env.do(t, http.MethodPost, path, AnswerRequest{PuzzleID: puzzles[0].ID, Answer: strPtr("1900")}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("wrong answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[AnswerResponse](t, w)
	if resp.Success {
		t.Error("wrong answer: expected success=false")
	}
	if resp.Message != "Incorrect answer, try again!" {
		t.Errorf("wrong answer: unexpected message %q", resp.Message)
	}

	w = env.do(t, http.MethodPost, path, AnswerRequest{PuzzleID: puzzles[0].ID, Answer: strPtr("1625")}, nil)
	resp = decode[AnswerResponse](t, w)
	if !resp.Success {
		t.Fatalf("correct answer: expected success=true, got %q", resp.Message)
	}
	if resp.NextPuzzle == nil || resp.NextPuzzle.Order != 2 {
		t.Fatalf("correct answer: expected next puzzle order 2, got %v", resp.NextPuzzle)
	}

	// Answering an earlier puzzle again is out of turn.
	w = env.do(t, http.MethodPost, path, AnswerRequest{PuzzleID: puzzles[0].ID, Answer: strPtr("1625")}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("out of turn: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Answers compare case-insensitively.
	for i := 1; i < len(puzzles); i++ {
		w = env.do(t, http.MethodPost, path, AnswerRequest{PuzzleID: puzzles[i].ID, Answer: strPtr(strings.ToUpper(demoAnswers[i]))}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("puzzle %d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
		resp = decode[AnswerResponse](t, w)
		if !resp.Success {
			t.Fatalf("puzzle %d: expected success", i+1)
		}
	}
	if resp.Message != "Congratulations! You've completed all puzzles!" {
		t.Errorf("last puzzle: unexpected message %q", resp.Message)
	}
	if resp.NextPuzzle != nil {
		t.Error("last puzzle: expected no next puzzle")
	}

	agg, err := env.store.Booking(context.Background(), env.code)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if agg.Instance.State() != hunt.StateCompleted {
		t.Errorf("expected completed instance, got %s", agg.Instance.State())
	}
	if len(agg.Instance.SolvedPuzzles) != len(puzzles) {
		t.Errorf("expected %d solved puzzles, got %d", len(puzzles), len(agg.Instance.SolvedPuzzles))
	}
}

func TestAnswerErrors(t *testing.T) {
	env := newTestEnv(t)
	puzzles := env.login(t).Booking.Game.Puzzles
	path := "/api/bookings/" + env.code + "/answer"

	tests := []struct {
		name   string
		req    AnswerRequest
		status int
	}{
		{"missing puzzle id", AnswerRequest{Answer: strPtr("x")}, http.StatusBadRequest},
		{"unknown puzzle", AnswerRequest{PuzzleID: "nope", Answer: strPtr("x")}, http.StatusNotFound},
		{"missing answer", AnswerRequest{PuzzleID: puzzles[0].ID}, http.StatusBadRequest},
		{"future puzzle", AnswerRequest{PuzzleID: puzzles[2].ID, Answer: strPtr(demoAnswers[2])}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, path, tt.req, nil)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestAnswerRestore(t *testing.T) {
	env := newTestEnv(t)
	puzzles := env.login(t).Booking.Game.Puzzles

	w := env.do(t, http.MethodPost, "/api/bookings/"+env.code+"/answer",
		AnswerRequest{PuzzleID: puzzles[3].ID, Restore: true}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[AnswerResponse](t, w)
	if !resp.Success || resp.Message != "Puzzle state restored" {
		t.Errorf("unexpected restore response %+v", resp)
	}
}

func TestOverridesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	for _, op := range []string{"skip", "previous", "reset"} {
		w := env.do(t, http.MethodPost, "/api/bookings/"+env.code+"/"+op, SkipRequest{}, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", op, w.Code)
		}
	}
}

func TestOverrides(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.loginAdmin(t)
	base := "/api/bookings/" + env.code

	// Before login there is no instance to move.
	w := env.do(t, http.MethodPost, base+"/reset", nil, cookies)
	if w.Code != http.StatusNotFound {
		t.Fatalf("reset without instance: expected 404, got %d: %s", w.Code, w.Body.String())
	}

	env.login(t)

	order := 3
	w = env.do(t, http.MethodPost, base+"/skip", SkipRequest{Order: &order}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("skip: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[InstanceResponse](t, w)
	if got := resp.Instance.CurrentPuzzleOrder; got == nil || *got != 3 {
		t.Errorf("skip: expected order 3, got %v", got)
	}

	bad := 9
	w = env.do(t, http.MethodPost, base+"/skip", SkipRequest{Order: &bad}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Errorf("skip out of range: expected 400, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, base+"/skip", SkipRequest{}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Errorf("skip without order: expected 400, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, base+"/previous", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("previous: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = decode[InstanceResponse](t, w)
	if got := resp.Instance.CurrentPuzzleOrder; got == nil || *got != 2 {
		t.Errorf("previous: expected order 2, got %v", got)
	}

	w = env.do(t, http.MethodPost, base+"/reset", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = decode[InstanceResponse](t, w)
	if got := resp.Instance.CurrentPuzzleOrder; got == nil || *got != 1 {
		t.Errorf("reset: expected order 1, got %v", got)
	}

	w = env.do(t, http.MethodPost, base+"/previous", nil, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("previous at first: expected 400, got %d", w.Code)
	}
	if e := decode[ErrorResponse](t, w); e.Code != "ALREADY_AT_FIRST_PUZZLE" {
		t.Errorf("previous at first: expected ALREADY_AT_FIRST_PUZZLE, got %s", e.Code)
	}
}

func TestPreviousCatalogMode(t *testing.T) {
	env := newTestEnv(t, progress.WithPreviousMode(hunt.PreviousCatalog))
	ctx := context.Background()
	cookies := env.loginAdmin(t)

	// Leave a gap at order 2 so the two modes disagree.
	games, _ := env.store.ListGames(ctx)
	game, _ := env.store.GetGame(ctx, games[0].ID)
	if err := env.store.DeletePuzzle(ctx, game.ID, game.Puzzles[1].ID); err != nil {
		t.Fatalf("delete puzzle: %v", err)
	}
	env.login(t)

	order := 3
	env.do(t, http.MethodPost, "/api/bookings/"+env.code+"/skip", SkipRequest{Order: &order}, cookies)

	w := env.do(t, http.MethodPost, "/api/bookings/"+env.code+"/previous", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("previous: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[InstanceResponse](t, w)
	if got := resp.Instance.CurrentPuzzleOrder; got == nil || *got != 1 {
		t.Errorf("expected order 1, got %v", got)
	}
}

func TestQRCode(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/bookings/"+env.code+"/qr", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
		t.Error("expected PNG signature")
	}

	w = env.do(t, http.MethodGet, "/api/bookings/ZZZ999/qr", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown code: expected 404, got %d", w.Code)
	}
}

func TestRequestScheme(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		tls       bool
		want      string
	}{
		{"plain", "", false, "http"},
		{"tls", "", true, "https"},
		{"proxy https", "https", false, "https"},
		{"proxy mixed case", " HTTPS ", false, "https"},
		{"proxy http over tls", "http", true, "http"},
		{"javascript ignored", "javascript", false, "http"},
		{"garbage ignored under tls", "ftp", true, "https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/bookings/ABC234/qr", nil)
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			if got := requestScheme(r); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
