package engine

import (
	"context"
	"fmt"

	"remitledger/internal/adapters"
	"remitledger/internal/domain"

	"github.com/sirupsen/logrus"
)

// CheckSolvency runs one solvency sweep: for every asset with a reserve it
// compares the sum of outstanding pending credits against the reserve
// balance. The invariant is enforced transactionally by the engine; this
// sweep is the operational tripwire that would catch a violation anyway.
func CheckSolvency(ctx context.Context, execID string, ledger adapters.Ledger) ([]domain.AssetSolvency, error) {
	var report []domain.AssetSolvency
	err := ledger.WithinTx(ctx, func(tx adapters.LedgerTx) error {
		var txErr error
		report, txErr = tx.SolvencyReport(ctx)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load solvency report: %w", err)
	}

	var violations []domain.AssetSolvency
	for _, s := range report {
		if s.Pending.Cmp(s.Reserve) > 0 {
			logrus.WithFields(logrus.Fields{
				"asset":   s.Asset,
				"pending": s.Pending.String(),
				"reserve": s.Reserve.String(),
			}).Error("Solvency invariant violated")
			violations = append(violations, s)
		}
	}

	logrus.Infof("Solvency sweep checked %d assets, %d violations; execID: %s", len(report), len(violations), execID)
	return violations, nil
}
