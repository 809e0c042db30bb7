package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/playperu/puzzlehunt/internal/progress"
)

const qrSize = 320

// handleQR renders a PNG QR code that opens the login page with the
// booking code filled in.
func handleQR(svc *progress.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agg, err := svc.Booking(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		target := url.URL{
			Scheme:   requestScheme(r),
			Host:     r.Host,
			Path:     "/",
			RawQuery: url.Values{"code": {agg.Booking.Code}}.Encode(),
		}

		png, err := qrcode.Encode(target.String(), qrcode.Medium, qrSize)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(png)
	}
}

// requestScheme is https under TLS or when a proxy says so. Any other
// X-Forwarded-Proto value is ignored.
func requestScheme(r *http.Request) string {
	switch strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))) {
	case "https":
		return "https"
	case "http":
		return "http"
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
