package engine

import (
	"math/big"

	"remitledger/internal/domain"
)

// convertAmount converts a source-asset amount into destination-asset units
// using a rate scaled by domain.RateScale, rescaling for any difference in
// decimal precision. Division truncates toward zero: the sub-unit residue is
// protocol dust and is dropped, never carried or compensated.
func convertAmount(amount, rate *big.Int, fromDecimals, toDecimals int32) *big.Int {
	num := new(big.Int).Mul(amount, rate)
	if toDecimals > fromDecimals {
		num.Mul(num, pow10(toDecimals-fromDecimals))
	}
	den := domain.RateScale
	if fromDecimals > toDecimals {
		den = new(big.Int).Mul(domain.RateScale, pow10(fromDecimals-toDecimals))
	}
	return num.Quo(num, den)
}

// feeFor computes the fee as a basis-point fraction of the gross converted
// amount, floored.
func feeFor(gross *big.Int, feeBps int64) *big.Int {
	fee := new(big.Int).Mul(gross, big.NewInt(feeBps))
	return fee.Quo(fee, big.NewInt(10_000))
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
