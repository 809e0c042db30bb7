package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

// SnapshotMessage is the first WebSocket message. Progress events follow.
type SnapshotMessage struct {
	Type     string             `json:"type"`
	Instance *hunt.GameInstance `json:"instance"`
}

// handleWS streams the same events as handleEvents over a WebSocket. The
// feed is one-way; anything the client sends is discarded.
func handleWS(svc *progress.Service, feed Feed, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := openBookingFeed(r.Context(), svc, feed, chi.URLParam(r, "code"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		defer sub.Close()

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 4*time.Hour)
		defer cancel()
		ctx = conn.CloseRead(ctx)

		snapshot, _ := json.Marshal(SnapshotMessage{Type: "snapshot", Instance: sub.instance})
		if err := conn.Write(ctx, websocket.MessageText, snapshot); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-sub.ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
