package rest

import (
	"log"
	"net/http"
	"time"

	"debtkeeper/internal/transport/auth"
)

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	stats, err := h.stats.Portfolio(r.Context(), ownerID, time.Now())
	if err != nil {
		log.Printf("[HTTP] getStats error: %v", err)
		ErrorInternal(w, "failed to aggregate portfolio")
		return
	}

	Success(w, "ok", toStatsJSON(stats))
}
