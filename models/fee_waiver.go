package models

import (
	"time"

	"gorm.io/gorm"
)

// Fee-waiver ("prise en charge") statuses. A waiver is created pending and
// transitions exactly once to approved or rejected.
const (
	WaiverPending  = "pending"
	WaiverApproved = "approved"
	WaiverRejected = "rejected"
)

// FeeWaiver is a percentage-based tuition reduction request. The reduction
// amount is snapshotted from the ledger's total due at request time and is
// never recomputed. On approval the reduction becomes a virtual offset in
// the remaining-balance formula; it is never added to the amount paid.
type FeeWaiver struct {
	gorm.Model
	StudentID       uint    `json:"studentId" gorm:"not null;index"`
	Type            string  `json:"type"`
	Reference       string  `json:"reference"`
	Percentage      float64 `json:"percentage" gorm:"not null"`
	ReductionAmount float64 `json:"reductionAmount" gorm:"type:numeric(12,2);not null"`
	Status          string  `json:"status" gorm:"default:'pending';index"`

	RequestedByID   uint       `json:"requestedById" gorm:"not null"`
	DecidedByID     *uint      `json:"decidedById"`
	DecidedAt       *time.Time `json:"decidedAt"`
	RejectionReason string     `json:"rejectionReason"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
