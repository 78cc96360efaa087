package rest

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"debtkeeper/internal/domain"
	"debtkeeper/internal/repository"
	"debtkeeper/internal/transport/auth"
)

func (h *Handler) createDebt(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateCreateDebtRequest(r)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ErrorBadRequest(w, ve.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	d, err := h.debts.Create(r.Context(), ownerID, req.ToInput(), time.Now())
	if err != nil {
		log.Printf("[HTTP] createDebt error: %v", err)
		ErrorBadRequest(w, err.Error())
		return
	}

	SuccessCreated(w, "debt created", toDebtJSON(d))
}

func (h *Handler) listDebts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	filter, err := DebtsFilterFromQuery(r)
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	views, err := h.debts.List(r.Context(), ownerID, filter, time.Now())
	if err != nil {
		log.Printf("[HTTP] listDebts error: %v", err)
		ErrorInternal(w, "failed to list debts")
		return
	}

	out := make([]debtJSON, 0, len(views))
	for _, v := range views {
		out = append(out, toDebtViewJSON(v))
	}

	Success(w, "ok", out)
}

func (h *Handler) getDebt(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	view, err := h.debts.Get(r.Context(), chi.URLParam(r, "id"), ownerID, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "debt not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] getDebt error: %v", err)
		ErrorInternal(w, "failed to load debt")
		return
	}

	Success(w, "ok", toDebtViewJSON(view))
}

func (h *Handler) getEligibility(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	view, err := h.debts.Get(r.Context(), chi.URLParam(r, "id"), ownerID, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "debt not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] getEligibility error: %v", err)
		ErrorInternal(w, "failed to load debt")
		return
	}

	Success(w, "ok", toEligibilityJSON(view.Eligibility))
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	result, err := h.debts.Schedule(r.Context(), chi.URLParam(r, "id"), ownerID, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "debt not found")
		return
	}
	var nonAmortizing *domain.NonAmortizingPaymentError
	if errors.As(err, &nonAmortizing) {
		ErrorUnprocessable(w, nonAmortizing.Error())
		return
	}
	if err != nil {
		log.Printf("[HTTP] getSchedule error: %v", err)
		ErrorInternal(w, "failed to project schedule")
		return
	}

	Success(w, "ok", toScheduleJSON(result))
}
