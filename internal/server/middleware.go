package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey int

const ctxKeyAdmin ctxKey = iota

const (
	adminCookieName = "admin_session"
	adminSessionTTL = 7 * 24 * time.Hour
)

// setAdminCookie writes the staff session cookie. An empty value clears it.
func setAdminCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	maxAge := int(adminSessionTTL / time.Second)
	if sessionID == "" {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireAdmin rejects requests without a live staff session and stores the
// session in the request context for adminFrom.
func requireAdmin(admin AdminStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(adminCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := admin.AdminFromSession(r.Context(), cookie.Value)
			switch {
			case errors.Is(err, errNoAdminSession):
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			case err != nil:
				logger.Error("loading admin session", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("admin.id", sess.AdminID))
			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminFrom(r *http.Request) (adminSession, bool) {
	sess, ok := r.Context().Value(ctxKeyAdmin).(adminSession)
	return sess, ok
}
