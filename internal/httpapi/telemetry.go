package httpapi

import (
	"net/http"
	"time"

	"github.com/kevinxuez/social-map/internal/auth"
	"github.com/kevinxuez/social-map/internal/socialgraph"
)

// handleTelemetry logs one client event. The sink is the log stream; nothing
// is stored. Unknown fields are ignored so older clients keep working.
func (h *Handler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var req socialgraph.TelemetryEvent
	if err := decodeJSONLenient(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	if !h.validateStruct(w, req) {
		return
	}

	user := req.User
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && user == "" {
		user = claims.Email
		if user == "" {
			user = claims.Subject
		}
	}
	ts := req.TS
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	h.metrics.IncTelemetryEvent(req.Type)
	h.log.Info().
		Str("type", req.Type).
		Int64("ts", ts).
		Str("user", user).
		Interface("data", req.Data).
		Msg("telemetry")

	h.writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}
