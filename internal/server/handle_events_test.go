package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

type sseEvent struct {
	id, name string
	data     []byte
}

// readEvent reads lines up to the next blank line, skipping comment pings.
func readEvent(t *testing.T, br *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = []byte(strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestEventStream(t *testing.T) {
	env := newTestEnv(t)
	puzzles := env.login(t).Booking.Game.Puzzles

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/bookings/"+env.code+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	br := bufio.NewReader(resp.Body)

	first := readEvent(t, br)
	if first.name != "snapshot" || first.id != "1" {
		t.Fatalf("expected snapshot with id 1, got %q id %q", first.name, first.id)
	}
	var gi hunt.GameInstance
	if err := json.Unmarshal(first.data, &gi); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if gi.CurrentPuzzleOrder == nil || *gi.CurrentPuzzleOrder != 1 {
		t.Errorf("expected snapshot at order 1, got %v", gi.CurrentPuzzleOrder)
	}

	w := env.do(t, http.MethodPost, "/api/bookings/"+env.code+"/answer",
		AnswerRequest{PuzzleID: puzzles[0].ID, Answer: strPtr(demoAnswers[0])}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	second := readEvent(t, br)
	if second.name != "progress" || second.id != "2" {
		t.Fatalf("expected progress with id 2, got %q id %q", second.name, second.id)
	}
	var ev progress.Event
	if err := json.Unmarshal(second.data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != progress.EventSolved || ev.PuzzleID != puzzles[0].ID {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestEventStreamBeforeLogin(t *testing.T) {
	env := newTestEnv(t)

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/bookings/"+env.code+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	ev := readEvent(t, bufio.NewReader(resp.Body))
	if ev.name != "snapshot" || string(ev.data) != "null" {
		t.Errorf("expected null snapshot, got %q %s", ev.name, ev.data)
	}
}

func TestEventStreamUnknownCode(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/bookings/ZZZ999/events", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// racingStore publishes a transition the moment the snapshot read returns,
// as another request committing at that instant would.
type racingStore struct {
	*SQLiteStore
	feed *Broker
	once sync.Once
}

func (s *racingStore) Booking(ctx context.Context, code string) (hunt.Aggregate, error) {
	agg, err := s.SQLiteStore.Booking(ctx, code)
	s.once.Do(func() {
		order := 3
		s.feed.Publish(code, progress.Event{Type: progress.EventSkipped, CurrentPuzzleOrder: &order})
	})
	return agg, err
}

func TestEventStreamKeepsTransitionDuringSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	racing := &racingStore{SQLiteStore: env.store, feed: env.feed}
	svc := progress.New(racing, progress.WithPublisher(env.feed), progress.WithLogger(logger))
	handler := New("", logger, Deps{Service: svc, Admin: env.store, Directory: env.store, Feed: env.feed}).Handler()

	ts := httptest.NewServer(handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Lowercase on purpose: the subscription must use the canonical code.
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/bookings/"+strings.ToLower(env.code)+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	br := bufio.NewReader(resp.Body)

	if ev := readEvent(t, br); ev.name != "snapshot" {
		t.Fatalf("expected snapshot first, got %q", ev.name)
	}
	next := readEvent(t, br)
	if next.name != "progress" {
		t.Fatalf("expected progress after snapshot, got %q", next.name)
	}
	var ev progress.Event
	if err := json.Unmarshal(next.data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != progress.EventSkipped || ev.CurrentPuzzleOrder == nil || *ev.CurrentPuzzleOrder != 3 {
		t.Errorf("expected skipped to order 3, got %+v", ev)
	}
}

func TestFeedUnknownCodeLeavesNoSubscriber(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/bookings/ZZZ999/events", "/api/bookings/ZZZ999/ws"} {
		w := env.do(t, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}
	w := env.do(t, http.MethodGet, "/api/bookings/AB/events", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed code, got %d", w.Code)
	}

	env.feed.mu.RLock()
	defer env.feed.mu.RUnlock()
	if len(env.feed.subs) != 0 {
		t.Errorf("expected no subscribers, got %d codes", len(env.feed.subs))
	}
}
