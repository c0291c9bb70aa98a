package handlers

import (
	"net/http"

	"wallit/internal/auth"
	"wallit/internal/websocket"
)

// WSUpdates upgrades to a websocket pushing import and re-conversion
// events. Browsers cannot set headers on websocket dials, so the token
// rides in the query string.
func (h *Handler) WSUpdates(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
