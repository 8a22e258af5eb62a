package domain

import "errors"

var (
	ErrUnauthorized          = errors.New("caller is not the owner")
	ErrUnregisteredCountry   = errors.New("country has no registered asset")
	ErrRateNotConfigured     = errors.New("exchange rate not configured")
	ErrInvalidRate           = errors.New("invalid rate configuration")
	ErrInvalidCountry        = errors.New("country code must be two uppercase letters")
	ErrInvalidAsset          = errors.New("invalid asset symbol")
	ErrInvalidAccount        = errors.New("account id must not be empty")
	ErrInvalidFee            = errors.New("fee must be between 0 and 10000 basis points")
	ErrUnknownAsset          = errors.New("asset is not registered")
	ErrAssetExists           = errors.New("asset is already registered")
	ErrZeroAmount            = errors.New("amount must be positive")
	ErrInsufficientLiquidity = errors.New("insufficient destination liquidity")
	ErrTransferFailed        = errors.New("token transfer rejected")
	ErrNothingToWithdraw     = errors.New("no pending credit to withdraw")
)
