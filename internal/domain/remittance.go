package domain

import (
	"math/big"

	"github.com/google/uuid"
)

// RateScale is the fixed-point denominator for exchange rates: a stored rate
// of 1e18 means one unit of the destination asset per unit of the source
// asset. Identity conversions (same asset on both legs) use this rate
// implicitly and never require a stored entry.
var RateScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// CustodyAccount is the vault account holding every balance the engine
// custodies: liquidity reserves and not-yet-withdrawn settlement credits.
const CustodyAccount = "@custody"

// Params table keys.
const (
	ParamOwner          = "owner_account"
	ParamFeeBasisPoints = "fee_basis_points"
)

type Asset struct {
	Symbol   string
	Decimals int32
}

type CountryAsset struct {
	Country string
	Asset   string
}

// AssetPair is the ordered key of a configured rate. No reverse entry is
// ever implied.
type AssetPair struct {
	FromAsset string
	ToAsset   string
}

type ExchangeRate struct {
	FromAsset string
	ToAsset   string
	// Rate is scaled by RateScale. Asymmetric by design: the reverse pair
	// has its own entry or none at all.
	Rate *big.Int
}

// AssetSolvency is one row of the solvency sweep: total outstanding pending
// credits versus the reserve backing them.
type AssetSolvency struct {
	Asset   string
	Pending *big.Int
	Reserve *big.Int
}

// SettlementReceipt is returned to the remit caller once the settlement
// committed.
type SettlementReceipt struct {
	EventID         uuid.UUID
	FromAsset       string
	ToAsset         string
	SentAmount      *big.Int
	ConvertedAmount *big.Int
	Fee             *big.Int
}

// WithdrawalReceipt is returned to the withdraw caller once the drained
// credit left engine custody.
type WithdrawalReceipt struct {
	EventID uuid.UUID
	Asset   string
	Amount  *big.Int
}
