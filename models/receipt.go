package models

import (
	"time"

	"gorm.io/gorm"
)

// Receipt is the immutable proof issued for exactly one payment. Number is
// human readable and unique ("RECU-<millis>-<suffix>"); uniqueness is
// advisory, backed by the unique index.
type Receipt struct {
	gorm.Model
	Number        string    `json:"number" gorm:"uniqueIndex;not null"`
	IssuedAt      time.Time `json:"issuedAt" gorm:"not null"`
	Amount        float64   `json:"amount" gorm:"type:numeric(12,2);not null"`
	AmountInWords string    `json:"amountInWords"`
	Issuer        string    `json:"issuer"`
}
