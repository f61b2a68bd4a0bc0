package services

import (
	"fmt"
	"math"
	"time"

	"github.com/divan/num2words"
	"github.com/google/uuid"
)

// NewReceiptNumber builds a human-readable receipt number. The timestamp
// keeps numbers sortable, the uuid suffix keeps them unique when two
// receipts are issued in the same millisecond. Uniqueness is still backed
// by the unique index on receipts.number.
func NewReceiptNumber(now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("RECU-%d-%s", now.UnixMilli(), suffix)
}

// AmountInWords spells out the whole currency units of an amount for the
// printed receipt, e.g. 500000 -> "five hundred thousand".
func AmountInWords(amount float64) string {
	return num2words.Convert(int(math.Round(amount)))
}
