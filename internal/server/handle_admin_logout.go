package server

import (
	"log/slog"
	"net/http"
)

// handleAdminLogout ends the staff session named by the cookie, if any. The
// cookie is cleared either way.
func handleAdminLogout(admin AdminStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(adminCookieName); err == nil && cookie.Value != "" {
			if err := admin.DeleteAdminSession(r.Context(), cookie.Value); err != nil {
				logger.Error("deleting admin session", "error", err)
			}
		}
		setAdminCookie(w, r, "")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
