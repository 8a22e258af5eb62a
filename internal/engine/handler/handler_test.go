package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"remitledger/internal/adapters/cache"
	"remitledger/internal/adapters/memory"
	"remitledger/internal/api"
	"remitledger/internal/domain"
	"remitledger/internal/engine"
	"remitledger/internal/engine/handler"

	"github.com/stretchr/testify/require"
)

const owner = "treasury-ops"

func newTestServer(t *testing.T) (*httptest.Server, *engine.Service) {
	t.Helper()
	ctx := context.Background()

	rateCache, err := cache.NewRateCache(64)
	require.NoError(t, err)
	t.Cleanup(rateCache.Close)

	svc := engine.NewService(memory.NewLedger(), rateCache)
	require.NoError(t, svc.Bootstrap(ctx, owner, 50))
	require.NoError(t, svc.RegisterAsset(ctx, owner, "USDC", 6))
	require.NoError(t, svc.RegisterAsset(ctx, owner, "EURC", 6))
	require.NoError(t, svc.SetCountryAsset(ctx, owner, "US", "USDC"))
	require.NoError(t, svc.SetCountryAsset(ctx, owner, "EU", "EURC"))

	rate := new(big.Int).Mul(big.NewInt(92), new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil))
	require.NoError(t, svc.SetRate(ctx, owner, "USDC", "EURC", rate))

	liquidity := big.NewInt(10_000_000_000)
	require.NoError(t, svc.Mint(ctx, owner, "EURC", owner, liquidity))
	require.NoError(t, svc.Approve(ctx, owner, "EURC", liquidity))
	require.NoError(t, svc.AddLiquidity(ctx, owner, "EURC", liquidity))

	srv := httptest.NewServer(api.NewRouter(handler.NewHandler(svc)))
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, account string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account-Id", account)
	}
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	return res
}

func decodeJSON(t *testing.T, res *http.Response, dst any) {
	t.Helper()
	defer func() { _ = res.Body.Close() }()
	require.NoError(t, json.NewDecoder(res.Body).Decode(dst))
}

func fundSender(t *testing.T, svc *engine.Service, account string, amount *big.Int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.Mint(ctx, owner, "USDC", account, amount))
	require.NoError(t, svc.Approve(ctx, account, "USDC", amount))
}

func TestRemitHandler_WorkedExample(t *testing.T) {
	srv, svc := newTestServer(t)
	fundSender(t, svc, "alice", big.NewInt(100_000_000))

	res := doJSON(t, srv, http.MethodPost, "/api/v1/remittances", "alice", map[string]string{
		"recipient":    "bob",
		"from_country": "US",
		"to_country":   "EU",
		"amount":       "100000000",
		"reference_id": "wire-42",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var body struct {
		EventID         string `json:"event_id"`
		FromAsset       string `json:"from_asset"`
		ToAsset         string `json:"to_asset"`
		SentAmount      string `json:"sent_amount"`
		ConvertedAmount string `json:"converted_amount"`
		Fee             string `json:"fee"`
	}
	decodeJSON(t, res, &body)
	require.NotEmpty(t, body.EventID)
	require.Equal(t, "USDC", body.FromAsset)
	require.Equal(t, "EURC", body.ToAsset)
	require.Equal(t, "100000000", body.SentAmount)
	require.Equal(t, "91540000", body.ConvertedAmount)
	require.Equal(t, "460000", body.Fee)
}

func TestRemitHandler_RejectsBadAmount(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, amount := range []string{"", "12.5", "-3", "1e6", "lots"} {
		res := doJSON(t, srv, http.MethodPost, "/api/v1/remittances", "alice", map[string]string{
			"recipient":    "bob",
			"from_country": "US",
			"to_country":   "EU",
			"amount":       amount,
		})
		require.Equal(t, http.StatusBadRequest, res.StatusCode, "amount %q", amount)
		_ = res.Body.Close()
	}
}

func TestRemitHandler_UnknownFieldRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	res := doJSON(t, srv, http.MethodPost, "/api/v1/remittances", "alice", map[string]string{
		"recipient": "bob",
		"surprise":  "field",
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	_ = res.Body.Close()
}

func TestRemitHandler_UnregisteredCountryIs404(t *testing.T) {
	srv, svc := newTestServer(t)
	fundSender(t, svc, "alice", big.NewInt(1_000_000))

	res := doJSON(t, srv, http.MethodPost, "/api/v1/remittances", "alice", map[string]string{
		"recipient":    "bob",
		"from_country": "US",
		"to_country":   "BR",
		"amount":       "1000000",
	})
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	_ = res.Body.Close()
}

func TestAdminHandlers_RequireOwner(t *testing.T) {
	srv, _ := newTestServer(t)

	res := doJSON(t, srv, http.MethodPost, "/api/v1/admin/rates", "mallory", map[string]string{
		"from_asset": "EURC",
		"to_asset":   "USDC",
		"rate":       "1090000000000000000",
	})
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	_ = res.Body.Close()

	res = doJSON(t, srv, http.MethodPost, "/api/v1/admin/mint", "", map[string]string{
		"asset":   "USDC",
		"account": "mallory",
		"amount":  "1000000",
	})
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	_ = res.Body.Close()
}

func TestRegisterAssetHandler_DuplicateIs409(t *testing.T) {
	srv, _ := newTestServer(t)

	res := doJSON(t, srv, http.MethodPost, "/api/v1/admin/assets", owner, map[string]any{
		"symbol":   "USDC",
		"decimals": 6,
	})
	require.Equal(t, http.StatusConflict, res.StatusCode)
	_ = res.Body.Close()
}

func TestGetRateHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	res := doJSON(t, srv, http.MethodGet, "/api/v1/rates/usdc/eurc", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		FromAsset string `json:"from_asset"`
		ToAsset   string `json:"to_asset"`
		Rate      string `json:"rate"`
	}
	decodeJSON(t, res, &body)
	require.Equal(t, "USDC", body.FromAsset)
	require.Equal(t, "EURC", body.ToAsset)
	require.Equal(t, "920000000000000000", body.Rate)

	// the reverse pair was never configured
	res = doJSON(t, srv, http.MethodGet, "/api/v1/rates/EURC/USDC", "", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	_ = res.Body.Close()
}

func TestWithdrawHandler_NothingPendingIs422(t *testing.T) {
	srv, _ := newTestServer(t)

	res := doJSON(t, srv, http.MethodPost, "/api/v1/withdrawals", "bob", map[string]string{
		"asset": "EURC",
	})
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	_ = res.Body.Close()
}

func TestWithdrawHandler_DrainsCredit(t *testing.T) {
	srv, svc := newTestServer(t)
	fundSender(t, svc, "alice", big.NewInt(100_000_000))

	_, err := svc.Remit(context.Background(), "alice", "bob", "US", "EU", big.NewInt(100_000_000), "wire-43")
	require.NoError(t, err)

	res := doJSON(t, srv, http.MethodPost, "/api/v1/withdrawals", "bob", map[string]string{
		"asset": "eurc",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		EventID string `json:"event_id"`
		Asset   string `json:"asset"`
		Amount  string `json:"amount"`
	}
	decodeJSON(t, res, &body)
	require.Equal(t, "EURC", body.Asset)
	require.Equal(t, "91540000", body.Amount)
}

func TestQueryHandlers(t *testing.T) {
	srv, svc := newTestServer(t)
	fundSender(t, svc, "alice", big.NewInt(100_000_000))
	_, err := svc.Remit(context.Background(), "alice", "bob", "US", "EU", big.NewInt(100_000_000), "wire-44")
	require.NoError(t, err)

	res := doJSON(t, srv, http.MethodGet, "/api/v1/countries", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var countries []struct {
		Country string `json:"country"`
		Asset   string `json:"asset"`
	}
	decodeJSON(t, res, &countries)
	require.Len(t, countries, 2)

	res = doJSON(t, srv, http.MethodGet, "/api/v1/credits/bob/EURC", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var credit struct {
		Account string `json:"account"`
		Asset   string `json:"asset"`
		Balance string `json:"balance"`
	}
	decodeJSON(t, res, &credit)
	require.Equal(t, "91540000", credit.Balance)

	res = doJSON(t, srv, http.MethodGet, "/api/v1/liquidity/EURC", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var reserve struct {
		Asset   string `json:"asset"`
		Balance string `json:"balance"`
	}
	decodeJSON(t, res, &reserve)
	// 10_000 EURC funded, 91.54 net out, 0.46 fee retained
	require.Equal(t, "9908460000", reserve.Balance)

	res = doJSON(t, srv, http.MethodGet, "/api/v1/events?limit=10", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var events []struct {
		Seq          int64  `json:"seq"`
		Type         string `json:"type"`
		FromCurrency string `json:"from_currency"`
		ToCurrency   string `json:"to_currency"`
		ReferenceID  string `json:"reference_id"`
	}
	decodeJSON(t, res, &events)
	require.Len(t, events, 1)
	require.Equal(t, string(domain.EventRemittance), events[0].Type)
	require.Equal(t, "USDC", events[0].FromCurrency)
	require.Equal(t, "EURC", events[0].ToCurrency)
	require.Equal(t, "wire-44", events[0].ReferenceID)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
}
