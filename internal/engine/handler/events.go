package handler

import (
	"net/http"
	"strconv"
	"time"
)

// unknownCurrency is reported for countries the registry no longer maps; the
// audit record itself stays exact either way.
const unknownCurrency = "UNKNOWN"

type eventView struct {
	Seq             int64     `json:"seq"`
	EventID         string    `json:"event_id"`
	Type            string    `json:"type"`
	Sender          string    `json:"sender,omitempty"`
	Recipient       string    `json:"recipient"`
	FromCountry     string    `json:"from_country,omitempty"`
	ToCountry       string    `json:"to_country,omitempty"`
	FromCurrency    string    `json:"from_currency,omitempty"`
	ToCurrency      string    `json:"to_currency,omitempty"`
	Asset           string    `json:"asset"`
	SentAmount      string    `json:"sent_amount"`
	ConvertedAmount string    `json:"converted_amount"`
	Fee             string    `json:"fee"`
	ReferenceID     string    `json:"reference_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	afterSeq, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32)

	events, err := h.service.ListEvents(r.Context(), afterSeq, int32(limit))
	if err != nil {
		writeDomainError(w, "ListEvents", err)
		return
	}

	countries, err := h.service.ListCountryAssets(r.Context())
	if err != nil {
		writeDomainError(w, "ListEvents", err)
		return
	}
	currencyByCountry := make(map[string]string, len(countries))
	for _, ca := range countries {
		currencyByCountry[ca.Country] = ca.Asset
	}
	currencyFor := func(country string) string {
		if country == "" {
			return ""
		}
		if currency, ok := currencyByCountry[country]; ok {
			return currency
		}
		return unknownCurrency
	}

	res := make([]eventView, 0, len(events))
	for _, ev := range events {
		res = append(res, eventView{
			Seq:             ev.Seq,
			EventID:         ev.EventID.String(),
			Type:            string(ev.Type),
			Sender:          ev.Sender,
			Recipient:       ev.Recipient,
			FromCountry:     ev.FromCountry,
			ToCountry:       ev.ToCountry,
			FromCurrency:    currencyFor(ev.FromCountry),
			ToCurrency:      currencyFor(ev.ToCountry),
			Asset:           ev.Asset,
			SentAmount:      ev.SentAmount.String(),
			ConvertedAmount: ev.ConvertedAmount.String(),
			Fee:             ev.Fee.String(),
			ReferenceID:     ev.ReferenceID,
			CreatedAt:       ev.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, res)
}
