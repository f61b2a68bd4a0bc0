package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is one tuition payment made by a student. Payments are immutable:
// they are created once inside the payment transaction and never updated or
// deleted afterwards.
type Payment struct {
	gorm.Model
	Amount        float64   `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentDate   time.Time `json:"paymentDate" gorm:"not null"`
	Method        string    `json:"method"`
	PerformedByID uint      `json:"performedById" gorm:"not null"`
	StudentID     uint      `json:"studentId" gorm:"not null;index"`
	ReceiptID     uint      `json:"receiptId" gorm:"uniqueIndex;not null"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Receipt *Receipt `gorm:"foreignKey:ReceiptID" json:"receipt,omitempty"`
}
