package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"debtkeeper/internal/service"
)

type Handler struct {
	debts    *service.DebtService
	payments *service.PaymentService
	stats    *service.StatsService
	exports  *service.ExportService
}

func NewHandler(
	debts *service.DebtService,
	payments *service.PaymentService,
	stats *service.StatsService,
	exports *service.ExportService,
) *Handler {
	return &Handler{
		debts:    debts,
		payments: payments,
		stats:    stats,
		exports:  exports,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Route("/debts", func(r chi.Router) {
		r.Get("/", h.listDebts)
		r.Post("/", h.createDebt)
		r.Get("/{id}", h.getDebt)
		r.Get("/{id}/eligibility", h.getEligibility)
		r.Get("/{id}/schedule", h.getSchedule)
		r.Get("/{id}/payments", h.listPayments)
		r.Post("/{id}/payments", h.applyPayment)
	})

	r.Get("/stats", h.getStats)

	r.Route("/export", func(r chi.Router) {
		r.Get("/", h.listExports)
		r.Get("/{export_id}", h.getExport)
		r.Post("/schedule/{id}", h.exportSchedule)
	})

	return r
}
