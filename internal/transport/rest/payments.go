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

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateApplyPaymentRequest(r)
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

	debt, payment, err := h.payments.Apply(r.Context(), chi.URLParam(r, "id"), ownerID, req.Amount, req.SourceAccountID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			ErrorNotFound(w, "debt not found")
			return
		}
		var notEligible *domain.NotEligibleError
		if errors.As(err, &notEligible) {
			ErrorConflict(w, notEligible.Error())
			return
		}
		var invalidAmount *domain.InvalidAmountError
		if errors.As(err, &invalidAmount) {
			ErrorUnprocessable(w, invalidAmount.Error())
			return
		}
		if errors.Is(err, repository.ErrStaleDebt) {
			ErrorConflict(w, "debt changed concurrently, retry")
			return
		}
		log.Printf("[HTTP] applyPayment error: %v", err)
		ErrorInternal(w, "failed to apply payment")
		return
	}

	SuccessCreated(w, "payment applied", map[string]interface{}{
		"debt":    toDebtJSON(debt),
		"payment": toPaymentJSON(payment),
	})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.GetOwnerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	payments, err := h.payments.List(r.Context(), chi.URLParam(r, "id"), ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "debt not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] listPayments error: %v", err)
		ErrorInternal(w, "failed to list payments")
		return
	}

	out := make([]paymentJSON, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentJSON(p))
	}

	Success(w, "ok", out)
}
