package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ready", nil) })
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/ledger/mint", handler.mint)
			r.Put("/ledger/fee-recipient", handler.setFeeRecipient)
			r.Get("/ledger/fee-recipient", handler.getFeeRecipient)
			r.Post("/ledger/approvals", handler.approve)
			r.Get("/ledger/allowance", handler.allowance)
			r.Post("/ledger/transfers", handler.transfer)
			r.Post("/ledger/pull-transfers", handler.pullTransfer)
			r.Get("/ledger/balance", handler.balance)
			r.Post("/orders", handler.createOrder)
			r.Put("/orders/policy", handler.setPolicy)
			r.Post("/orders/releases", handler.release)
			r.Post("/orders/payouts", handler.payout)
			r.Post("/orders/hold-cancellations", handler.cancelHold)
			r.Post("/orders/cancellations", handler.cancelOrder)
			r.Get("/orders", handler.getOrder)
			r.Get("/orders/count", handler.orderCount)
			r.Get("/orders/ledger", handler.orderLedger)
		})
	})
	return r
}
