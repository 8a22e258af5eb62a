package postgres

import (
	"context"
	"fmt"

	"remitledger/internal/domain"
)

// Audit log access. The table is append-only: the engine inserts inside the
// settlement/withdrawal transaction and downstream consumers page by seq.

func (t *ledgerTx) AppendEvent(ctx context.Context, ev domain.AuditEvent) error {
	const q = `
		insert into audit_events (
			event_id, event_type, sender, recipient, from_country, to_country,
			asset, sent_amount, converted_amount, fee, reference_id, created_at
		) values ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric, $11, $12);
	`
	_, err := t.tx.Exec(ctx, q,
		ev.EventID,
		string(ev.Type),
		ev.Sender,
		ev.Recipient,
		ev.FromCountry,
		ev.ToCountry,
		ev.Asset,
		ev.SentAmount.String(),
		ev.ConvertedAmount.String(),
		ev.Fee.String(),
		ev.ReferenceID,
		ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append %s event: %w", ev.Type, err)
	}
	return nil
}

func (t *ledgerTx) ListEvents(ctx context.Context, afterSeq int64, limit int32) ([]domain.AuditEvent, error) {
	const q = `
		select seq, event_id, event_type, sender, recipient, from_country, to_country,
		       asset, sent_amount::text, converted_amount::text, fee::text, reference_id, created_at
		from audit_events
		where seq > $1
		order by seq
		limit $2;
	`
	rows, err := t.tx.Query(ctx, q, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.AuditEvent, 0, limit)
	for rows.Next() {
		var (
			ev                       domain.AuditEvent
			evType                   string
			rawSent, rawConv, rawFee string
		)
		if err = rows.Scan(
			&ev.Seq, &ev.EventID, &evType, &ev.Sender, &ev.Recipient,
			&ev.FromCountry, &ev.ToCountry, &ev.Asset,
			&rawSent, &rawConv, &rawFee, &ev.ReferenceID, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.Type = domain.EventType(evType)
		if ev.SentAmount, err = parseNumeric(rawSent); err != nil {
			return nil, err
		}
		if ev.ConvertedAmount, err = parseNumeric(rawConv); err != nil {
			return nil, err
		}
		if ev.Fee, err = parseNumeric(rawFee); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}
