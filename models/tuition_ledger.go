package models

import "gorm.io/gorm"

// Ledger settlement statuses.
const (
	LedgerUnsettled = "unsettled"
	LedgerSettled   = "settled"
)

// SettlementTolerance is the absolute rounding tolerance under which a
// remaining balance counts as zero.
const SettlementTolerance = 0.01

// TuitionLedger is the per-student tuition balance: total due for the year,
// amount paid so far and the remaining balance. Remaining is stored, not
// derived, and recomputed inside every transaction that touches the ledger:
// remaining = due - paid - approved waiver reduction.
type TuitionLedger struct {
	gorm.Model
	TotalDue   float64 `json:"totalDue" gorm:"type:numeric(12,2);not null"`
	AmountPaid float64 `json:"amountPaid" gorm:"type:numeric(12,2);not null;default:0"`
	Remaining  float64 `json:"remaining" gorm:"type:numeric(12,2);not null;default:0"`
	Status     string  `json:"status" gorm:"default:'unsettled'"`
}

// Settled reports whether a remaining balance counts as fully paid.
func Settled(remaining float64) bool {
	return remaining <= SettlementTolerance && remaining >= -SettlementTolerance
}
