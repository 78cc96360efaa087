package rest

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"debtkeeper/internal/repository"
	"debtkeeper/internal/transport/auth"
)

func (h *Handler) exportSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportID, err := h.exports.StartScheduleExport(r.Context(), chi.URLParam(r, "id"), ownerID, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "debt not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] exportSchedule error: %v", err)
		ErrorInternal(w, "failed to start export")
		return
	}

	SuccessAccepted(w, "export queued", map[string]interface{}{
		"export_id": exportID,
	})
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exports, err := h.exports.GetExports(r.Context(), ownerID)
	if err != nil {
		log.Printf("[HTTP] listExports error: %v", err)
		ErrorInternal(w, "failed to list exports")
		return
	}

	Success(w, "ok", exports)
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	export, err := h.exports.GetExport(r.Context(), chi.URLParam(r, "export_id"), ownerID)
	if err != nil {
		ErrorNotFound(w, "export not found")
		return
	}

	Success(w, "ok", export)
}
