package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"remitledger/internal/domain"

	"github.com/jackc/pgx/v5"
)

// Token vault operations on the shared ledger transaction. The vault is the
// custodial stand-in for the collaborator fungible asset: a transfer succeeds
// iff balance (and allowance, for transfer-from) suffice, and a rejected
// transfer surfaces as domain.ErrTransferFailed which aborts the whole
// enclosing operation.

func (t *ledgerTx) TokenBalance(ctx context.Context, asset, holder string) (*big.Int, error) {
	var raw string
	err := t.tx.QueryRow(ctx,
		`select balance::text from token_balances where asset = $1 and holder = $2`,
		asset, holder,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q balance of %q: %w", asset, holder, err)
	}
	return parseNumeric(raw)
}

func (t *ledgerTx) TokenApprove(ctx context.Context, asset, holder, spender string, amount *big.Int) error {
	const q = `
		insert into token_allowances (asset, holder, spender, amount)
		values ($1, $2, $3, $4::numeric)
		on conflict (asset, holder, spender) do update set amount = excluded.amount;
	`
	_, err := t.tx.Exec(ctx, q, asset, holder, spender, amount.String())
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownAsset
	}
	if err != nil {
		return fmt.Errorf("failed to approve %q spend of %q: %w", spender, asset, err)
	}
	return nil
}

func (t *ledgerTx) TokenMint(ctx context.Context, asset, to string, amount *big.Int) error {
	const q = `
		insert into token_balances (asset, holder, balance) values ($1, $2, $3::numeric)
		on conflict (asset, holder) do update
		set balance = token_balances.balance + excluded.balance;
	`
	_, err := t.tx.Exec(ctx, q, asset, to, amount.String())
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownAsset
	}
	if err != nil {
		return fmt.Errorf("failed to mint %q to %q: %w", asset, to, err)
	}
	return nil
}

func (t *ledgerTx) TokenTransfer(ctx context.Context, asset, from, to string, amount *big.Int) error {
	const debitQ = `
		update token_balances set balance = balance - $3::numeric
		where asset = $1 and holder = $2 and balance >= $3::numeric;
	`
	tag, err := t.tx.Exec(ctx, debitQ, asset, from, amount.String())
	if err != nil {
		return fmt.Errorf("failed to debit %q from %q: %w", asset, from, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransferFailed
	}

	const creditQ = `
		insert into token_balances (asset, holder, balance) values ($1, $2, $3::numeric)
		on conflict (asset, holder) do update
		set balance = token_balances.balance + excluded.balance;
	`
	if _, err = t.tx.Exec(ctx, creditQ, asset, to, amount.String()); err != nil {
		return fmt.Errorf("failed to credit %q to %q: %w", asset, to, err)
	}
	return nil
}

func (t *ledgerTx) TokenTransferFrom(ctx context.Context, asset, spender, from, to string, amount *big.Int) error {
	const allowanceQ = `
		update token_allowances set amount = amount - $4::numeric
		where asset = $1 and holder = $2 and spender = $3 and amount >= $4::numeric;
	`
	tag, err := t.tx.Exec(ctx, allowanceQ, asset, from, spender, amount.String())
	if err != nil {
		return fmt.Errorf("failed to spend allowance of %q for %q: %w", from, asset, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransferFailed
	}
	return t.TokenTransfer(ctx, asset, from, to, amount)
}
