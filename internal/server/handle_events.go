package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

const ssePingInterval = 30 * time.Second

// bookingFeed is a live subscription plus the instance as it stood once the
// subscription was in place. Transitions committed after the snapshot read
// arrive on ch; ones before it are in the snapshot.
type bookingFeed struct {
	feed     Feed
	code     string
	ch       chan []byte
	instance *hunt.GameInstance
}

func openBookingFeed(ctx context.Context, svc *progress.Service, feed Feed, raw string) (*bookingFeed, error) {
	code, err := svc.Canonical(raw)
	if err != nil {
		return nil, err
	}
	ch := feed.Subscribe(code)
	agg, err := svc.Booking(ctx, code)
	if err != nil {
		feed.Unsubscribe(code, ch)
		return nil, err
	}
	return &bookingFeed{feed: feed, code: code, ch: ch, instance: agg.Instance}, nil
}

func (f *bookingFeed) Close() { f.feed.Unsubscribe(f.code, f.ch) }

// sseWriter numbers the events of one stream so clients can tell gaps.
type sseWriter struct {
	w       io.Writer
	flusher http.Flusher
	next    int
}

func (s *sseWriter) event(name string, data []byte) {
	s.next++
	fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.next, name, data)
	s.flusher.Flush()
}

func (s *sseWriter) ping() {
	fmt.Fprint(s.w, ": ping\n\n")
	s.flusher.Flush()
}

// handleEvents streams progression events for one booking. The first event is
// a snapshot of the instance as it stands, or null before the first login.
func handleEvents(svc *progress.Service, feed Feed, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		sub, err := openBookingFeed(r.Context(), svc, feed, chi.URLParam(r, "code"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		defer sub.Close()

		snapshot, err := json.Marshal(sub.instance)
		if err != nil {
			writeServiceError(w, logger, fmt.Errorf("encoding snapshot: %w", err))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		stream := &sseWriter{w: w, flusher: flusher}
		stream.event("snapshot", snapshot)

		ping := time.NewTicker(ssePingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-sub.ch:
				stream.event("progress", data)
			case <-ping.C:
				stream.ping()
			}
		}
	}
}
