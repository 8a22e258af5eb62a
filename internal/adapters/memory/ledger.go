package memory

import (
	"context"
	"math/big"

	"remitledger/internal/adapters"
	"remitledger/internal/domain"
)

type creditKey struct {
	recipient string
	asset     string
}

type balanceKey struct {
	asset  string
	holder string
}

type allowanceKey struct {
	asset   string
	holder  string
	spender string
}

type state struct {
	params     map[string]string
	assets     map[string]int32
	countries  map[string]string
	rates      map[domain.AssetPair]*big.Int
	reserves   map[string]*big.Int
	credits    map[creditKey]*big.Int
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
	events     []domain.AuditEvent
	seq        int64
}

// Ledger is an in-memory settlement store with the same transactional
// semantics as the postgres implementation: WithinTx snapshots the state and
// restores it when fn fails. It models the deterministic serialized ledger
// and is not safe for concurrent use.
type Ledger struct {
	s state

	// TransferHook, when set, runs at the start of every TokenTransfer. It
	// stands in for the collaborator asset's own transfer logic, which may
	// call back into the engine; tests use it to simulate a reentrant or
	// rejecting token.
	TransferHook func(asset, from, to string, amount *big.Int) error
}

var _ adapters.Ledger = (*Ledger)(nil)
var _ adapters.LedgerTx = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{s: newState()}
}

func newState() state {
	return state{
		params:     make(map[string]string),
		assets:     make(map[string]int32),
		countries:  make(map[string]string),
		rates:      make(map[domain.AssetPair]*big.Int),
		reserves:   make(map[string]*big.Int),
		credits:    make(map[creditKey]*big.Int),
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

func (l *Ledger) WithinTx(ctx context.Context, fn func(tx adapters.LedgerTx) error) error {
	snap := l.s.clone()
	if err := fn(l); err != nil {
		l.s = snap
		return err
	}
	return nil
}

func (l *Ledger) Param(ctx context.Context, key string) (string, error) {
	return l.s.params[key], nil
}

func (l *Ledger) SetParam(ctx context.Context, key, value string) error {
	l.s.params[key] = value
	return nil
}

func (l *Ledger) RegisterAsset(ctx context.Context, symbol string, decimals int32) error {
	if _, ok := l.s.assets[symbol]; ok {
		return domain.ErrAssetExists
	}
	l.s.assets[symbol] = decimals
	return nil
}

func (l *Ledger) AssetDecimals(ctx context.Context, symbol string) (int32, error) {
	decimals, ok := l.s.assets[symbol]
	if !ok {
		return 0, domain.ErrUnknownAsset
	}
	return decimals, nil
}

func (l *Ledger) SetCountryAsset(ctx context.Context, country, asset string) error {
	if _, ok := l.s.assets[asset]; !ok {
		return domain.ErrUnknownAsset
	}
	l.s.countries[country] = asset
	return nil
}

func (l *Ledger) CountryAsset(ctx context.Context, country string) (string, error) {
	asset, ok := l.s.countries[country]
	if !ok {
		return "", domain.ErrUnregisteredCountry
	}
	return asset, nil
}

func (l *Ledger) ListCountryAssets(ctx context.Context) ([]domain.CountryAsset, error) {
	list := make([]domain.CountryAsset, 0, len(l.s.countries))
	for country, asset := range l.s.countries {
		list = append(list, domain.CountryAsset{Country: country, Asset: asset})
	}
	return list, nil
}

func (l *Ledger) SetRate(ctx context.Context, fromAsset, toAsset string, rate *big.Int) error {
	if _, ok := l.s.assets[fromAsset]; !ok {
		return domain.ErrUnknownAsset
	}
	if _, ok := l.s.assets[toAsset]; !ok {
		return domain.ErrUnknownAsset
	}
	l.s.rates[domain.AssetPair{FromAsset: fromAsset, ToAsset: toAsset}] = new(big.Int).Set(rate)
	return nil
}

func (l *Ledger) Rate(ctx context.Context, fromAsset, toAsset string) (*big.Int, error) {
	rate, ok := l.s.rates[domain.AssetPair{FromAsset: fromAsset, ToAsset: toAsset}]
	if !ok {
		return nil, domain.ErrRateNotConfigured
	}
	return new(big.Int).Set(rate), nil
}

func (l *Ledger) AddReserve(ctx context.Context, asset string, amount *big.Int) error {
	if _, ok := l.s.assets[asset]; !ok {
		return domain.ErrUnknownAsset
	}
	l.s.reserves[asset] = add(l.s.reserves[asset], amount)
	return nil
}

func (l *Ledger) SubReserve(ctx context.Context, asset string, amount *big.Int) error {
	balance := l.s.reserves[asset]
	if balance == nil || balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientLiquidity
	}
	l.s.reserves[asset] = new(big.Int).Sub(balance, amount)
	return nil
}

func (l *Ledger) Reserve(ctx context.Context, asset string) (*big.Int, error) {
	return value(l.s.reserves[asset]), nil
}

func (l *Ledger) AddPendingCredit(ctx context.Context, recipient, asset string, amount *big.Int) error {
	key := creditKey{recipient: recipient, asset: asset}
	l.s.credits[key] = add(l.s.credits[key], amount)
	return nil
}

func (l *Ledger) DrainPendingCredit(ctx context.Context, recipient, asset string) (*big.Int, error) {
	key := creditKey{recipient: recipient, asset: asset}
	balance := l.s.credits[key]
	if balance == nil || balance.Sign() == 0 {
		return nil, domain.ErrNothingToWithdraw
	}
	l.s.credits[key] = new(big.Int)
	return new(big.Int).Set(balance), nil
}

func (l *Ledger) PendingCredit(ctx context.Context, recipient, asset string) (*big.Int, error) {
	return value(l.s.credits[creditKey{recipient: recipient, asset: asset}]), nil
}

func (l *Ledger) AppendEvent(ctx context.Context, ev domain.AuditEvent) error {
	l.s.seq++
	ev.Seq = l.s.seq
	l.s.events = append(l.s.events, ev)
	return nil
}

func (l *Ledger) ListEvents(ctx context.Context, afterSeq int64, limit int32) ([]domain.AuditEvent, error) {
	events := make([]domain.AuditEvent, 0, limit)
	for _, ev := range l.s.events {
		if ev.Seq <= afterSeq {
			continue
		}
		events = append(events, ev)
		if int32(len(events)) == limit {
			break
		}
	}
	return events, nil
}

func (l *Ledger) SolvencyReport(ctx context.Context) ([]domain.AssetSolvency, error) {
	report := make([]domain.AssetSolvency, 0, len(l.s.reserves))
	for asset, reserve := range l.s.reserves {
		pending := new(big.Int)
		for key, balance := range l.s.credits {
			if key.asset == asset {
				pending.Add(pending, balance)
			}
		}
		report = append(report, domain.AssetSolvency{
			Asset:   asset,
			Pending: pending,
			Reserve: new(big.Int).Set(reserve),
		})
	}
	return report, nil
}

func (l *Ledger) TokenBalance(ctx context.Context, asset, holder string) (*big.Int, error) {
	return value(l.s.balances[balanceKey{asset: asset, holder: holder}]), nil
}

func (l *Ledger) TokenApprove(ctx context.Context, asset, holder, spender string, amount *big.Int) error {
	if _, ok := l.s.assets[asset]; !ok {
		return domain.ErrUnknownAsset
	}
	l.s.allowances[allowanceKey{asset: asset, holder: holder, spender: spender}] = new(big.Int).Set(amount)
	return nil
}

func (l *Ledger) TokenMint(ctx context.Context, asset, to string, amount *big.Int) error {
	if _, ok := l.s.assets[asset]; !ok {
		return domain.ErrUnknownAsset
	}
	key := balanceKey{asset: asset, holder: to}
	l.s.balances[key] = add(l.s.balances[key], amount)
	return nil
}

func (l *Ledger) TokenTransfer(ctx context.Context, asset, from, to string, amount *big.Int) error {
	if l.TransferHook != nil {
		if err := l.TransferHook(asset, from, to, amount); err != nil {
			return domain.ErrTransferFailed
		}
	}
	fromKey := balanceKey{asset: asset, holder: from}
	balance := l.s.balances[fromKey]
	if balance == nil || balance.Cmp(amount) < 0 {
		return domain.ErrTransferFailed
	}
	l.s.balances[fromKey] = new(big.Int).Sub(balance, amount)
	toKey := balanceKey{asset: asset, holder: to}
	l.s.balances[toKey] = add(l.s.balances[toKey], amount)
	return nil
}

func (l *Ledger) TokenTransferFrom(ctx context.Context, asset, spender, from, to string, amount *big.Int) error {
	key := allowanceKey{asset: asset, holder: from, spender: spender}
	allowance := l.s.allowances[key]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return domain.ErrTransferFailed
	}
	l.s.allowances[key] = new(big.Int).Sub(allowance, amount)
	return l.TokenTransfer(ctx, asset, from, to, amount)
}

func (s state) clone() state {
	c := state{
		params:     make(map[string]string, len(s.params)),
		assets:     make(map[string]int32, len(s.assets)),
		countries:  make(map[string]string, len(s.countries)),
		rates:      make(map[domain.AssetPair]*big.Int, len(s.rates)),
		reserves:   make(map[string]*big.Int, len(s.reserves)),
		credits:    make(map[creditKey]*big.Int, len(s.credits)),
		balances:   make(map[balanceKey]*big.Int, len(s.balances)),
		allowances: make(map[allowanceKey]*big.Int, len(s.allowances)),
		events:     append([]domain.AuditEvent(nil), s.events...),
		seq:        s.seq,
	}
	for k, v := range s.params {
		c.params[k] = v
	}
	for k, v := range s.assets {
		c.assets[k] = v
	}
	for k, v := range s.countries {
		c.countries[k] = v
	}
	for k, v := range s.rates {
		c.rates[k] = new(big.Int).Set(v)
	}
	for k, v := range s.reserves {
		c.reserves[k] = new(big.Int).Set(v)
	}
	for k, v := range s.credits {
		c.credits[k] = new(big.Int).Set(v)
	}
	for k, v := range s.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for k, v := range s.allowances {
		c.allowances[k] = new(big.Int).Set(v)
	}
	return c
}

func add(current, delta *big.Int) *big.Int {
	if current == nil {
		return new(big.Int).Set(delta)
	}
	return new(big.Int).Add(current, delta)
}

func value(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
