package adapters

import (
	"context"
	"math/big"

	"remitledger/internal/domain"
)

// Ledger is the durable settlement store. Every public engine operation runs
// inside exactly one WithinTx call: either all of its mutations commit or
// none do.
type Ledger interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the transaction-scoped view of the store. Token vault
// operations share the transaction with ledger mutations so a failed
// settlement also reverses its token legs.
type LedgerTx interface {
	Param(ctx context.Context, key string) (string, error)
	SetParam(ctx context.Context, key, value string) error

	RegisterAsset(ctx context.Context, symbol string, decimals int32) error
	AssetDecimals(ctx context.Context, symbol string) (int32, error)

	SetCountryAsset(ctx context.Context, country, asset string) error
	CountryAsset(ctx context.Context, country string) (string, error)
	ListCountryAssets(ctx context.Context) ([]domain.CountryAsset, error)

	SetRate(ctx context.Context, fromAsset, toAsset string, rate *big.Int) error
	Rate(ctx context.Context, fromAsset, toAsset string) (*big.Int, error)

	AddReserve(ctx context.Context, asset string, amount *big.Int) error
	SubReserve(ctx context.Context, asset string, amount *big.Int) error
	Reserve(ctx context.Context, asset string) (*big.Int, error)

	AddPendingCredit(ctx context.Context, recipient, asset string, amount *big.Int) error
	DrainPendingCredit(ctx context.Context, recipient, asset string) (*big.Int, error)
	PendingCredit(ctx context.Context, recipient, asset string) (*big.Int, error)

	AppendEvent(ctx context.Context, ev domain.AuditEvent) error
	ListEvents(ctx context.Context, afterSeq int64, limit int32) ([]domain.AuditEvent, error)

	SolvencyReport(ctx context.Context) ([]domain.AssetSolvency, error)

	TokenBalance(ctx context.Context, asset, holder string) (*big.Int, error)
	TokenApprove(ctx context.Context, asset, holder, spender string, amount *big.Int) error
	TokenMint(ctx context.Context, asset, to string, amount *big.Int) error
	TokenTransfer(ctx context.Context, asset, from, to string, amount *big.Int) error
	TokenTransferFrom(ctx context.Context, asset, spender, from, to string, amount *big.Int) error
}

// RateCache caches configured rates for the read API; the settlement path
// always reads rates transactionally.
type RateCache interface {
	Get(pair domain.AssetPair) (*big.Int, bool)
	Set(pair domain.AssetPair, rate *big.Int)
	Del(pair domain.AssetPair)
}
