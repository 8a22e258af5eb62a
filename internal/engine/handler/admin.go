package handler

import (
	"net/http"
	"strings"
)

type registerAssetRequest struct {
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

func (h *Handler) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	var req registerAssetRequest
	if !decodeBody(w, r, 256, &req) {
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := h.service.RegisterAsset(r.Context(), caller(r), symbol, req.Decimals); err != nil {
		writeDomainError(w, "RegisterAsset", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type setCountryAssetRequest struct {
	Country string `json:"country"`
	Asset   string `json:"asset"`
}

func (h *Handler) SetCountryAsset(w http.ResponseWriter, r *http.Request) {
	var req setCountryAssetRequest
	if !decodeBody(w, r, 256, &req) {
		return
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	asset := strings.ToUpper(strings.TrimSpace(req.Asset))
	if err := h.service.SetCountryAsset(r.Context(), caller(r), country, asset); err != nil {
		writeDomainError(w, "SetCountryAsset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setRateRequest struct {
	FromAsset string `json:"from_asset"`
	ToAsset   string `json:"to_asset"`
	// Rate is a decimal string scaled by 1e18.
	Rate string `json:"rate"`
}

func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if !decodeBody(w, r, 512, &req) {
		return
	}
	rate, ok := parseAmount(req.Rate)
	if !ok {
		writeError(w, http.StatusBadRequest, "rate must be a positive integer string")
		return
	}
	fromAsset := strings.ToUpper(strings.TrimSpace(req.FromAsset))
	toAsset := strings.ToUpper(strings.TrimSpace(req.ToAsset))
	if err := h.service.SetRate(r.Context(), caller(r), fromAsset, toAsset, rate); err != nil {
		writeDomainError(w, "SetRate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setFeeRequest struct {
	FeeBasisPoints int64 `json:"fee_basis_points"`
}

func (h *Handler) SetFee(w http.ResponseWriter, r *http.Request) {
	var req setFeeRequest
	if !decodeBody(w, r, 256, &req) {
		return
	}
	if err := h.service.SetFeeBasisPoints(r.Context(), caller(r), req.FeeBasisPoints); err != nil {
		writeDomainError(w, "SetFee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addLiquidityRequest struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

func (h *Handler) AddLiquidity(w http.ResponseWriter, r *http.Request) {
	var req addLiquidityRequest
	if !decodeBody(w, r, 512, &req) {
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative integer string")
		return
	}
	asset := strings.ToUpper(strings.TrimSpace(req.Asset))
	if err := h.service.AddLiquidity(r.Context(), caller(r), asset, amount); err != nil {
		writeDomainError(w, "AddLiquidity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

func (h *Handler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req transferOwnershipRequest
	if !decodeBody(w, r, 256, &req) {
		return
	}
	if err := h.service.TransferOwnership(r.Context(), caller(r), strings.TrimSpace(req.NewOwner)); err != nil {
		writeDomainError(w, "TransferOwnership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type mintRequest struct {
	Asset   string `json:"asset"`
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decodeBody(w, r, 512, &req) {
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative integer string")
		return
	}
	asset := strings.ToUpper(strings.TrimSpace(req.Asset))
	if err := h.service.Mint(r.Context(), caller(r), asset, strings.TrimSpace(req.Account), amount); err != nil {
		writeDomainError(w, "Mint", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
