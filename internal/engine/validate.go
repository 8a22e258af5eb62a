package engine

import (
	"math/big"

	"remitledger/internal/domain"
)

const maxAssetSymbolLen = 16

// validateCountry accepts exactly two uppercase ASCII letters. The code is
// otherwise opaque: no currency-name semantics are attached here.
func validateCountry(code string) error {
	if len(code) != 2 {
		return domain.ErrInvalidCountry
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return domain.ErrInvalidCountry
		}
	}
	return nil
}

func validateAssetSymbol(symbol string) error {
	if len(symbol) == 0 || len(symbol) > maxAssetSymbolLen {
		return domain.ErrInvalidAsset
	}
	for i := 0; i < len(symbol); i++ {
		c := symbol[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return domain.ErrInvalidAsset
		}
	}
	return nil
}

func validatePositive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrZeroAmount
	}
	return nil
}

func validateAccount(account string) error {
	if account == "" {
		return domain.ErrInvalidAccount
	}
	return nil
}
