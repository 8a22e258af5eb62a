package domain

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRemittance EventType = "remittance"
	EventWithdrawal EventType = "withdrawal"
)

// AuditEvent is one append-only audit log record. Events are written in the
// same transaction as the state change they describe and consumed downstream
// with at-least-once semantics; EventID is the dedup key for consumers.
type AuditEvent struct {
	Seq         int64
	EventID     uuid.UUID
	Type        EventType
	Sender      string
	Recipient   string
	FromCountry string
	ToCountry   string
	// Asset is the destination asset of the credit (remittance) or the
	// withdrawn asset (withdrawal).
	Asset           string
	SentAmount      *big.Int
	ConvertedAmount *big.Int
	Fee             *big.Int
	// ReferenceID is the caller-supplied correlation token, passed through
	// verbatim. Uniqueness is not enforced here.
	ReferenceID string
	CreatedAt   time.Time
}
