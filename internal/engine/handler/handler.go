package handler

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"remitledger/internal/domain"
	"remitledger/internal/engine"

	"github.com/sirupsen/logrus"
)

// callerHeader carries the caller's account id. Authentication of that id is
// a deployment concern (gateway/mTLS), same as the chain supplying the
// sender in the original system.
const callerHeader = "X-Account-Id"

type Handler struct {
	service *engine.Service
}

func NewHandler(service *engine.Service) *Handler {
	return &Handler{service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainError maps a domain sentinel to an HTTP status. Unknown errors
// are logged and reported as 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnregisteredCountry),
		errors.Is(err, domain.ErrRateNotConfigured),
		errors.Is(err, domain.ErrUnknownAsset):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAssetExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientLiquidity),
		errors.Is(err, domain.ErrTransferFailed),
		errors.Is(err, domain.ErrNothingToWithdraw):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidCountry),
		errors.Is(err, domain.ErrInvalidAsset),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidFee),
		errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrZeroAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		msg := "ups, the operation didn't go through this time"
		logrus.WithError(err).WithField("handler", op).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func caller(r *http.Request) string {
	return r.Header.Get(callerHeader)
}

// parseAmount reads a decimal string into a non-negative integer amount in
// the asset's smallest unit.
func parseAmount(raw string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, false
	}
	return amount, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
