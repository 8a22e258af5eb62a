package handler

import (
	"net/http"
	"strings"
)

type remitRequest struct {
	Recipient   string `json:"recipient"`
	FromCountry string `json:"from_country"`
	ToCountry   string `json:"to_country"`
	// Amount is in the source asset's smallest unit.
	Amount string `json:"amount"`
	// ReferenceID is an opaque correlation token passed through to the
	// audit record verbatim; the engine never checks its uniqueness.
	ReferenceID string `json:"reference_id"`
}

type remitResponse struct {
	EventID         string `json:"event_id"`
	FromAsset       string `json:"from_asset"`
	ToAsset         string `json:"to_asset"`
	SentAmount      string `json:"sent_amount"`
	ConvertedAmount string `json:"converted_amount"`
	Fee             string `json:"fee"`
}

func (h *Handler) Remit(w http.ResponseWriter, r *http.Request) {
	var req remitRequest
	if !decodeBody(w, r, 1024, &req) {
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "amount must be a positive integer string")
		return
	}
	fromCountry := strings.ToUpper(strings.TrimSpace(req.FromCountry))
	toCountry := strings.ToUpper(strings.TrimSpace(req.ToCountry))

	receipt, err := h.service.Remit(r.Context(), caller(r), strings.TrimSpace(req.Recipient), fromCountry, toCountry, amount, req.ReferenceID)
	if err != nil {
		writeDomainError(w, "Remit", err)
		return
	}

	writeJSON(w, http.StatusCreated, remitResponse{
		EventID:         receipt.EventID.String(),
		FromAsset:       receipt.FromAsset,
		ToAsset:         receipt.ToAsset,
		SentAmount:      receipt.SentAmount.String(),
		ConvertedAmount: receipt.ConvertedAmount.String(),
		Fee:             receipt.Fee.String(),
	})
}
