package engine

import (
	"context"
	"math/big"
	"testing"

	"remitledger/internal/adapters/memory"

	"github.com/stretchr/testify/require"
)

func TestCheckSolvency_Healthy(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	require.NoError(t, ledger.RegisterAsset(ctx, "USDC", 6))
	require.NoError(t, ledger.AddReserve(ctx, "USDC", big.NewInt(1_000)))
	require.NoError(t, ledger.AddPendingCredit(ctx, "bob", "USDC", big.NewInt(400)))
	require.NoError(t, ledger.AddPendingCredit(ctx, "carol", "USDC", big.NewInt(600)))

	violations, err := CheckSolvency(ctx, "exec-1", ledger)
	require.NoError(t, err)
	require.Empty(t, violations)
}

func TestCheckSolvency_ReportsViolation(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	require.NoError(t, ledger.RegisterAsset(ctx, "USDC", 6))
	require.NoError(t, ledger.RegisterAsset(ctx, "EURC", 6))
	require.NoError(t, ledger.AddReserve(ctx, "USDC", big.NewInt(100)))
	require.NoError(t, ledger.AddReserve(ctx, "EURC", big.NewInt(500)))
	require.NoError(t, ledger.AddPendingCredit(ctx, "bob", "USDC", big.NewInt(150)))
	require.NoError(t, ledger.AddPendingCredit(ctx, "bob", "EURC", big.NewInt(500)))

	violations, err := CheckSolvency(ctx, "exec-2", ledger)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Equal(t, "USDC", violations[0].Asset)
	require.Equal(t, big.NewInt(150), violations[0].Pending)
	require.Equal(t, big.NewInt(100), violations[0].Reserve)
}
