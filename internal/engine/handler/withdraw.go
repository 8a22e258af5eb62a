package handler

import (
	"net/http"
	"strings"
)

type withdrawRequest struct {
	Asset string `json:"asset"`
}

type withdrawResponse struct {
	EventID string `json:"event_id"`
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeBody(w, r, 256, &req) {
		return
	}
	asset := strings.ToUpper(strings.TrimSpace(req.Asset))

	receipt, err := h.service.Withdraw(r.Context(), caller(r), asset)
	if err != nil {
		writeDomainError(w, "Withdraw", err)
		return
	}

	writeJSON(w, http.StatusOK, withdrawResponse{
		EventID: receipt.EventID.String(),
		Asset:   receipt.Asset,
		Amount:  receipt.Amount.String(),
	})
}

type approveRequest struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !decodeBody(w, r, 512, &req) {
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative integer string")
		return
	}
	asset := strings.ToUpper(strings.TrimSpace(req.Asset))
	if err := h.service.Approve(r.Context(), caller(r), asset, amount); err != nil {
		writeDomainError(w, "Approve", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
