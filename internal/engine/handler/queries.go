package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type rateResponse struct {
	FromAsset string `json:"from_asset"`
	ToAsset   string `json:"to_asset"`
	Rate      string `json:"rate"`
}

func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	fromAsset := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "from")))
	toAsset := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "to")))

	rate, err := h.service.GetRate(r.Context(), fromAsset, toAsset)
	if err != nil {
		writeDomainError(w, "GetRate", err)
		return
	}

	writeJSON(w, http.StatusOK, rateResponse{
		FromAsset: fromAsset,
		ToAsset:   toAsset,
		Rate:      rate.String(),
	})
}

type countryAssetView struct {
	Country string `json:"country"`
	Asset   string `json:"asset"`
}

func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCountryAssets(r.Context())
	if err != nil {
		writeDomainError(w, "ListCountries", err)
		return
	}

	res := make([]countryAssetView, 0, len(list))
	for _, ca := range list {
		res = append(res, countryAssetView{Country: ca.Country, Asset: ca.Asset})
	}
	writeJSON(w, http.StatusOK, res)
}

type balanceResponse struct {
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

func (h *Handler) GetLiquidity(w http.ResponseWriter, r *http.Request) {
	asset := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "asset")))

	balance, err := h.service.GetReserve(r.Context(), asset)
	if err != nil {
		writeDomainError(w, "GetLiquidity", err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Asset: asset, Balance: balance.String()})
}

type creditResponse struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

func (h *Handler) GetPendingCredit(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	asset := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "asset")))

	balance, err := h.service.GetPendingCredit(r.Context(), account, asset)
	if err != nil {
		writeDomainError(w, "GetPendingCredit", err)
		return
	}
	writeJSON(w, http.StatusOK, creditResponse{Account: account, Asset: asset, Balance: balance.String()})
}
