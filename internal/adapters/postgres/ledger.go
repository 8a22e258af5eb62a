package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"remitledger/internal/adapters"
	"remitledger/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger is the postgres-backed settlement store. All amount columns are
// numeric(78,0) and travel through text so values never touch float types.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// WithinTx runs fn inside a single database transaction. Any error from fn
// rolls every mutation back, including the token vault legs.
func (l *Ledger) WithinTx(ctx context.Context, fn func(tx adapters.LedgerTx) error) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) Param(ctx context.Context, key string) (string, error) {
	var value string
	err := t.tx.QueryRow(ctx, `select value from params where key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read param %q: %w", key, err)
	}
	return value, nil
}

func (t *ledgerTx) SetParam(ctx context.Context, key, value string) error {
	const q = `
		insert into params (key, value) values ($1, $2)
		on conflict (key) do update set value = excluded.value;
	`
	if _, err := t.tx.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("failed to set param %q: %w", key, err)
	}
	return nil
}

func (t *ledgerTx) RegisterAsset(ctx context.Context, symbol string, decimals int32) error {
	_, err := t.tx.Exec(ctx, `insert into assets (symbol, decimals) values ($1, $2)`, symbol, decimals)
	if isUniqueViolation(err) {
		return domain.ErrAssetExists
	}
	if err != nil {
		return fmt.Errorf("failed to register asset %q: %w", symbol, err)
	}
	return nil
}

func (t *ledgerTx) AssetDecimals(ctx context.Context, symbol string) (int32, error) {
	var decimals int32
	err := t.tx.QueryRow(ctx, `select decimals from assets where symbol = $1`, symbol).Scan(&decimals)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUnknownAsset
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read decimals for %q: %w", symbol, err)
	}
	return decimals, nil
}

func (t *ledgerTx) SetCountryAsset(ctx context.Context, country, asset string) error {
	const q = `
		insert into country_assets (country, asset) values ($1, $2)
		on conflict (country) do update set asset = excluded.asset;
	`
	_, err := t.tx.Exec(ctx, q, country, asset)
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownAsset
	}
	if err != nil {
		return fmt.Errorf("failed to map country %q to asset %q: %w", country, asset, err)
	}
	return nil
}

func (t *ledgerTx) CountryAsset(ctx context.Context, country string) (string, error) {
	var asset string
	err := t.tx.QueryRow(ctx, `select asset from country_assets where country = $1`, country).Scan(&asset)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrUnregisteredCountry
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve country %q: %w", country, err)
	}
	return asset, nil
}

func (t *ledgerTx) ListCountryAssets(ctx context.Context) ([]domain.CountryAsset, error) {
	rows, err := t.tx.Query(ctx, `select country, asset from country_assets order by country`)
	if err != nil {
		return nil, fmt.Errorf("failed to list country assets: %w", err)
	}
	defer rows.Close()

	list := make([]domain.CountryAsset, 0, 16)
	for rows.Next() {
		var ca domain.CountryAsset
		if err = rows.Scan(&ca.Country, &ca.Asset); err != nil {
			return nil, fmt.Errorf("failed to scan country asset: %w", err)
		}
		list = append(list, ca)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country assets: %w", err)
	}
	return list, nil
}

func (t *ledgerTx) SetRate(ctx context.Context, fromAsset, toAsset string, rate *big.Int) error {
	const q = `
		insert into exchange_rates (from_asset, to_asset, rate, updated_at)
		values ($1, $2, $3::numeric, now())
		on conflict (from_asset, to_asset) do update
		set rate = excluded.rate, updated_at = now();
	`
	_, err := t.tx.Exec(ctx, q, fromAsset, toAsset, rate.String())
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownAsset
	}
	if err != nil {
		return fmt.Errorf("failed to set rate %s/%s: %w", fromAsset, toAsset, err)
	}
	return nil
}

func (t *ledgerTx) Rate(ctx context.Context, fromAsset, toAsset string) (*big.Int, error) {
	var raw string
	err := t.tx.QueryRow(ctx,
		`select rate::text from exchange_rates where from_asset = $1 and to_asset = $2`,
		fromAsset, toAsset,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRateNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rate %s/%s: %w", fromAsset, toAsset, err)
	}
	return parseNumeric(raw)
}

func (t *ledgerTx) AddReserve(ctx context.Context, asset string, amount *big.Int) error {
	const q = `
		insert into reserves (asset, balance) values ($1, $2::numeric)
		on conflict (asset) do update set balance = reserves.balance + excluded.balance;
	`
	_, err := t.tx.Exec(ctx, q, asset, amount.String())
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownAsset
	}
	if err != nil {
		return fmt.Errorf("failed to credit reserve %q: %w", asset, err)
	}
	return nil
}

func (t *ledgerTx) SubReserve(ctx context.Context, asset string, amount *big.Int) error {
	const q = `
		update reserves set balance = balance - $2::numeric
		where asset = $1 and balance >= $2::numeric;
	`
	tag, err := t.tx.Exec(ctx, q, asset, amount.String())
	if err != nil {
		return fmt.Errorf("failed to debit reserve %q: %w", asset, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientLiquidity
	}
	return nil
}

func (t *ledgerTx) Reserve(ctx context.Context, asset string) (*big.Int, error) {
	var raw string
	err := t.tx.QueryRow(ctx, `select balance::text from reserves where asset = $1`, asset).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reserve %q: %w", asset, err)
	}
	return parseNumeric(raw)
}

func (t *ledgerTx) AddPendingCredit(ctx context.Context, recipient, asset string, amount *big.Int) error {
	const q = `
		insert into pending_credits (recipient, asset, balance) values ($1, $2, $3::numeric)
		on conflict (recipient, asset) do update
		set balance = pending_credits.balance + excluded.balance;
	`
	if _, err := t.tx.Exec(ctx, q, recipient, asset, amount.String()); err != nil {
		return fmt.Errorf("failed to credit %q with %q: %w", recipient, asset, err)
	}
	return nil
}

func (t *ledgerTx) DrainPendingCredit(ctx context.Context, recipient, asset string) (*big.Int, error) {
	// Returns the pre-drain balance and zeroes it in one statement, so a
	// second drain inside the same operation observes nothing to withdraw.
	const q = `
		with drained as (
			select balance from pending_credits
			where recipient = $1 and asset = $2 and balance > 0
			for update
		)
		update pending_credits pc set balance = 0
		from drained
		where pc.recipient = $1 and pc.asset = $2
		returning drained.balance::text;
	`
	var raw string
	err := t.tx.QueryRow(ctx, q, recipient, asset).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNothingToWithdraw
	}
	if err != nil {
		return nil, fmt.Errorf("failed to drain credit of %q in %q: %w", recipient, asset, err)
	}
	return parseNumeric(raw)
}

func (t *ledgerTx) PendingCredit(ctx context.Context, recipient, asset string) (*big.Int, error) {
	var raw string
	err := t.tx.QueryRow(ctx,
		`select balance::text from pending_credits where recipient = $1 and asset = $2`,
		recipient, asset,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credit of %q in %q: %w", recipient, asset, err)
	}
	return parseNumeric(raw)
}

func (t *ledgerTx) SolvencyReport(ctx context.Context) ([]domain.AssetSolvency, error) {
	const q = `
		select r.asset, coalesce(sum(pc.balance), 0)::text, r.balance::text
		from reserves r
		left join pending_credits pc on pc.asset = r.asset
		group by r.asset, r.balance
		order by r.asset;
	`
	rows, err := t.tx.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query solvency report: %w", err)
	}
	defer rows.Close()

	report := make([]domain.AssetSolvency, 0, 8)
	for rows.Next() {
		var (
			s                      domain.AssetSolvency
			rawPending, rawReserve string
		)
		if err = rows.Scan(&s.Asset, &rawPending, &rawReserve); err != nil {
			return nil, fmt.Errorf("failed to scan solvency row: %w", err)
		}
		if s.Pending, err = parseNumeric(rawPending); err != nil {
			return nil, err
		}
		if s.Reserve, err = parseNumeric(rawReserve); err != nil {
			return nil, err
		}
		report = append(report, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating solvency rows: %w", err)
	}
	return report, nil
}

func parseNumeric(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("unparseable numeric value %q", raw)
	}
	return v, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
