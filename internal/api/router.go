package api

import (
	"remitledger/internal/engine/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Administrative surface (owner-gated in the service layer)
	router.Post("/api/v1/admin/assets", h.RegisterAsset)
	router.Post("/api/v1/admin/countries", h.SetCountryAsset)
	router.Post("/api/v1/admin/rates", h.SetRate)
	router.Post("/api/v1/admin/fee", h.SetFee)
	router.Post("/api/v1/admin/liquidity", h.AddLiquidity)
	router.Post("/api/v1/admin/ownership", h.TransferOwnership)
	router.Post("/api/v1/admin/mint", h.Mint)

	// User surface
	router.Post("/api/v1/approvals", h.Approve)
	router.Post("/api/v1/remittances", h.Remit)
	router.Post("/api/v1/withdrawals", h.Withdraw)

	// Read surface
	router.Get("/api/v1/rates/{from:[A-Za-z0-9]+}/{to:[A-Za-z0-9]+}", h.GetRate)
	router.Get("/api/v1/countries", h.ListCountries)
	router.Get("/api/v1/liquidity/{asset}", h.GetLiquidity)
	router.Get("/api/v1/credits/{account}/{asset}", h.GetPendingCredit)
	router.Get("/api/v1/events", h.ListEvents)
	return router
}
