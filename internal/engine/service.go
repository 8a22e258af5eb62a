package engine

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"remitledger/internal/adapters"
	"remitledger/internal/domain"

	"github.com/google/uuid"
)

// Service is the settlement engine. Every public operation runs inside one
// ledger transaction: it either commits all of its effects (reserve moves,
// pending credits, token legs, audit record) or none of them.
type Service struct {
	ledger adapters.Ledger
	cache  adapters.RateCache
	now    func() time.Time
}

func NewService(ledger adapters.Ledger, cache adapters.RateCache) *Service {
	return &Service{ledger: ledger, cache: cache, now: time.Now}
}

// Bootstrap seeds the owner account and fee once; persisted values win on
// later boots so runtime ownership transfers and fee changes stick.
func (s *Service) Bootstrap(ctx context.Context, owner string, feeBps int64) error {
	if err := validateAccount(owner); err != nil {
		return err
	}
	if feeBps < 0 || feeBps > 10_000 {
		return domain.ErrInvalidFee
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		current, err := tx.Param(ctx, domain.ParamOwner)
		if err != nil {
			return err
		}
		if current == "" {
			if err = tx.SetParam(ctx, domain.ParamOwner, owner); err != nil {
				return err
			}
		}
		currentFee, err := tx.Param(ctx, domain.ParamFeeBasisPoints)
		if err != nil {
			return err
		}
		if currentFee == "" {
			return tx.SetParam(ctx, domain.ParamFeeBasisPoints, strconv.FormatInt(feeBps, 10))
		}
		return nil
	})
}

func (s *Service) requireOwner(ctx context.Context, tx adapters.LedgerTx, caller string) error {
	owner, err := tx.Param(ctx, domain.ParamOwner)
	if err != nil {
		return err
	}
	if owner == "" || caller != owner {
		return domain.ErrUnauthorized
	}
	return nil
}

// RegisterAsset makes an asset handle known to the engine together with its
// decimal precision, as reported by the collaborator asset.
func (s *Service) RegisterAsset(ctx context.Context, caller, symbol string, decimals int32) error {
	if err := validateAssetSymbol(symbol); err != nil {
		return err
	}
	if decimals < 0 || decimals > 30 {
		return domain.ErrInvalidAsset
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		return tx.RegisterAsset(ctx, symbol, decimals)
	})
}

// SetCountryAsset maps a country code to its backing asset, overwriting any
// previous mapping. Settlements already committed are unaffected.
func (s *Service) SetCountryAsset(ctx context.Context, caller, country, asset string) error {
	if err := validateCountry(country); err != nil {
		return err
	}
	if err := validateAssetSymbol(asset); err != nil {
		return err
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		if _, err := tx.AssetDecimals(ctx, asset); err != nil {
			return err
		}
		return tx.SetCountryAsset(ctx, country, asset)
	})
}

// SetRate configures the rate for one ordered asset pair, scaled by
// domain.RateScale. The reverse pair is untouched: asymmetry is deliberate.
// Identity pairs are rejected; same-asset settlements use the implicit rate.
func (s *Service) SetRate(ctx context.Context, caller, fromAsset, toAsset string, rate *big.Int) error {
	if err := validateAssetSymbol(fromAsset); err != nil {
		return err
	}
	if err := validateAssetSymbol(toAsset); err != nil {
		return err
	}
	if fromAsset == toAsset || rate == nil || rate.Sign() <= 0 {
		return domain.ErrInvalidRate
	}
	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		return tx.SetRate(ctx, fromAsset, toAsset, rate)
	})
	if err != nil {
		return err
	}
	s.cache.Del(domain.AssetPair{FromAsset: fromAsset, ToAsset: toAsset})
	return nil
}

// SetFeeBasisPoints updates the settlement fee fraction.
func (s *Service) SetFeeBasisPoints(ctx context.Context, caller string, feeBps int64) error {
	if feeBps < 0 || feeBps > 10_000 {
		return domain.ErrInvalidFee
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		return tx.SetParam(ctx, domain.ParamFeeBasisPoints, strconv.FormatInt(feeBps, 10))
	})
}

// TransferOwnership hands the administrative role to another account.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if err := validateAccount(newOwner); err != nil {
		return err
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		return tx.SetParam(ctx, domain.ParamOwner, newOwner)
	})
}

// AddLiquidity pulls amount of asset from the owner into engine custody and
// credits the reserve. The pull and the reserve credit are one atomic unit.
func (s *Service) AddLiquidity(ctx context.Context, caller, asset string, amount *big.Int) error {
	if err := validatePositive(amount); err != nil {
		return err
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		if _, err := tx.AssetDecimals(ctx, asset); err != nil {
			return err
		}
		if err := tx.TokenTransferFrom(ctx, asset, domain.CustodyAccount, caller, domain.CustodyAccount, amount); err != nil {
			return err
		}
		return tx.AddReserve(ctx, asset, amount)
	})
}

// Mint creates token supply in the vault. Owner-only operational plumbing
// for provisioning and test environments.
func (s *Service) Mint(ctx context.Context, caller, asset, to string, amount *big.Int) error {
	if err := validatePositive(amount); err != nil {
		return err
	}
	if err := validateAccount(to); err != nil {
		return err
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		return tx.TokenMint(ctx, asset, to, amount)
	})
}

// Approve lets any holder grant the engine custody account an allowance over
// their vault balance, the precondition for remit and AddLiquidity pulls.
func (s *Service) Approve(ctx context.Context, caller, asset string, amount *big.Int) error {
	if err := validateAccount(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrZeroAmount
	}
	return s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		return tx.TokenApprove(ctx, asset, caller, domain.CustodyAccount, amount)
	})
}

// Remit settles one cross-border remittance: it pulls the sent amount from
// the sender, converts it at the configured rate, deducts the fee, moves the
// reserves, credits the recipient a withdrawable balance and appends the
// audit record. Any failure rolls the whole operation back, including the
// pull.
func (s *Service) Remit(ctx context.Context, sender, recipient, fromCountry, toCountry string, sentAmount *big.Int, referenceID string) (domain.SettlementReceipt, error) {
	var receipt domain.SettlementReceipt
	if err := validateAccount(sender); err != nil {
		return receipt, err
	}
	if err := validateAccount(recipient); err != nil {
		return receipt, err
	}
	if err := validatePositive(sentAmount); err != nil {
		return receipt, err
	}
	if err := validateCountry(fromCountry); err != nil {
		return receipt, err
	}
	if err := validateCountry(toCountry); err != nil {
		return receipt, err
	}

	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		fromAsset, err := tx.CountryAsset(ctx, fromCountry)
		if err != nil {
			return err
		}
		toAsset, err := tx.CountryAsset(ctx, toCountry)
		if err != nil {
			return err
		}

		// Pull the sent funds into custody. A later failure in this
		// transaction reverses the pull along with everything else.
		if err = tx.TokenTransferFrom(ctx, fromAsset, domain.CustodyAccount, sender, domain.CustodyAccount, sentAmount); err != nil {
			return err
		}

		rate, err := s.rateWithin(ctx, tx, fromAsset, toAsset)
		if err != nil {
			return err
		}
		fromDecimals, err := tx.AssetDecimals(ctx, fromAsset)
		if err != nil {
			return err
		}
		toDecimals, err := tx.AssetDecimals(ctx, toAsset)
		if err != nil {
			return err
		}

		gross := convertAmount(sentAmount, rate, fromDecimals, toDecimals)
		feeBps, err := s.feeBasisPoints(ctx, tx)
		if err != nil {
			return err
		}
		fee := feeFor(gross, feeBps)
		net := new(big.Int).Sub(gross, fee)

		// The destination reserve backs the credit; the fee stays in the
		// reserve so the move is net-zero for solvency.
		if net.Sign() > 0 {
			if err = tx.SubReserve(ctx, toAsset, net); err != nil {
				return err
			}
		}
		if err = tx.AddReserve(ctx, fromAsset, sentAmount); err != nil {
			return err
		}
		if err = tx.AddPendingCredit(ctx, recipient, toAsset, net); err != nil {
			return err
		}

		ev := domain.AuditEvent{
			EventID:         uuid.New(),
			Type:            domain.EventRemittance,
			Sender:          sender,
			Recipient:       recipient,
			FromCountry:     fromCountry,
			ToCountry:       toCountry,
			Asset:           toAsset,
			SentAmount:      sentAmount,
			ConvertedAmount: net,
			Fee:             fee,
			ReferenceID:     referenceID,
			CreatedAt:       s.now().UTC(),
		}
		if err = tx.AppendEvent(ctx, ev); err != nil {
			return err
		}

		receipt = domain.SettlementReceipt{
			EventID:         ev.EventID,
			FromAsset:       fromAsset,
			ToAsset:         toAsset,
			SentAmount:      sentAmount,
			ConvertedAmount: net,
			Fee:             fee,
		}
		return nil
	})
	return receipt, err
}

// Withdraw drains the caller's entire pending credit for asset and transfers
// it out of custody. The drain happens strictly before the token transfer,
// so a reentrant withdraw issued during the transfer finds nothing left. A
// failed transfer rolls the drain back in full.
func (s *Service) Withdraw(ctx context.Context, caller, asset string) (domain.WithdrawalReceipt, error) {
	var receipt domain.WithdrawalReceipt
	if err := validateAccount(caller); err != nil {
		return receipt, err
	}

	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		amount, err := tx.DrainPendingCredit(ctx, caller, asset)
		if err != nil {
			return err
		}
		if err = tx.TokenTransfer(ctx, asset, domain.CustodyAccount, caller, amount); err != nil {
			return err
		}

		ev := domain.AuditEvent{
			EventID:         uuid.New(),
			Type:            domain.EventWithdrawal,
			Recipient:       caller,
			Asset:           asset,
			SentAmount:      new(big.Int),
			ConvertedAmount: amount,
			Fee:             new(big.Int),
			CreatedAt:       s.now().UTC(),
		}
		if err = tx.AppendEvent(ctx, ev); err != nil {
			return err
		}

		receipt = domain.WithdrawalReceipt{EventID: ev.EventID, Asset: asset, Amount: amount}
		return nil
	})
	return receipt, err
}

// GetRate returns the configured rate for an ordered pair, or the implicit
// identity rate for same-asset pairs. Cached for the read API only.
func (s *Service) GetRate(ctx context.Context, fromAsset, toAsset string) (*big.Int, error) {
	if err := validateAssetSymbol(fromAsset); err != nil {
		return nil, err
	}
	if err := validateAssetSymbol(toAsset); err != nil {
		return nil, err
	}
	if fromAsset == toAsset {
		return new(big.Int).Set(domain.RateScale), nil
	}
	pair := domain.AssetPair{FromAsset: fromAsset, ToAsset: toAsset}
	if rate, ok := s.cache.Get(pair); ok {
		return rate, nil
	}
	var rate *big.Int
	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		var txErr error
		rate, txErr = tx.Rate(ctx, fromAsset, toAsset)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(pair, rate)
	return rate, nil
}

func (s *Service) ListCountryAssets(ctx context.Context) ([]domain.CountryAsset, error) {
	var list []domain.CountryAsset
	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		var txErr error
		list, txErr = tx.ListCountryAssets(ctx)
		return txErr
	})
	return list, err
}

func (s *Service) GetReserve(ctx context.Context, asset string) (*big.Int, error) {
	var balance *big.Int
	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		var txErr error
		balance, txErr = tx.Reserve(ctx, asset)
		return txErr
	})
	return balance, err
}

func (s *Service) GetPendingCredit(ctx context.Context, account, asset string) (*big.Int, error) {
	var balance *big.Int
	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		var txErr error
		balance, txErr = tx.PendingCredit(ctx, account, asset)
		return txErr
	})
	return balance, err
}

func (s *Service) ListEvents(ctx context.Context, afterSeq int64, limit int32) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var events []domain.AuditEvent
	err := s.ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		var txErr error
		events, txErr = tx.ListEvents(ctx, afterSeq, limit)
		return txErr
	})
	return events, err
}

func (s *Service) rateWithin(ctx context.Context, tx adapters.LedgerTx, fromAsset, toAsset string) (*big.Int, error) {
	if fromAsset == toAsset {
		return new(big.Int).Set(domain.RateScale), nil
	}
	return tx.Rate(ctx, fromAsset, toAsset)
}

func (s *Service) feeBasisPoints(ctx context.Context, tx adapters.LedgerTx) (int64, error) {
	raw, err := tx.Param(ctx, domain.ParamFeeBasisPoints)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	feeBps, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt fee parameter %q: %w", raw, err)
	}
	return feeBps, nil
}
