package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/config"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// PaymentService applies tuition payments. Every call runs in one database
// transaction covering the ledger update, the payment and receipt records
// and, on a first payment, the group assignment.
type PaymentService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	return &PaymentService{DB: db, Cfg: cfg}
}

// PaymentResult is what the HTTP layer returns to the cashier.
type PaymentResult struct {
	PaymentID        uint    `json:"paymentId"`
	ReceiptID        uint    `json:"receiptId"`
	ReceiptNumber    string  `json:"receiptNumber"`
	RemainingBalance float64 `json:"remainingBalance"`
	SettlementStatus string  `json:"settlementStatus"`
	WasFirstPayment  bool    `json:"wasFirstPayment"`
}

// Record applies a positive amount to the student's tuition ledger, creates
// the immutable payment and receipt records and, on the student's first
// payment, assigns them to a capacity-bounded group. Any failure rolls the
// whole transaction back.
func (s *PaymentService) Record(studentID uint, amount float64, method string, performedBy uint) (*PaymentResult, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	var result PaymentResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return wrapDBError(err)
		}

		var ledger models.TuitionLedger
		if err := forUpdate(tx).First(&ledger, student.LedgerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return wrapDBError(err)
		}

		var prior int64
		if err := tx.Model(&models.Payment{}).Where("student_id = ?", student.ID).Count(&prior).Error; err != nil {
			return wrapDBError(err)
		}
		result.WasFirstPayment = prior == 0

		reduction, err := approvedReduction(tx, student.ID)
		if err != nil {
			return err
		}

		newPaid := ledger.AmountPaid + amount
		newRemaining := ledger.TotalDue - newPaid - reduction
		if newRemaining < -models.SettlementTolerance {
			return ErrOverpayment
		}

		status := models.LedgerUnsettled
		if models.Settled(newRemaining) {
			newRemaining = 0
			status = models.LedgerSettled
		}

		now := time.Now()

		var issuer string
		var performer models.User
		if err := tx.First(&performer, performedBy).Error; err == nil {
			issuer = performer.Email
		}

		receipt := models.Receipt{
			Number:        NewReceiptNumber(now),
			IssuedAt:      now,
			Amount:        amount,
			AmountInWords: AmountInWords(amount),
			Issuer:        issuer,
		}
		if err := tx.Create(&receipt).Error; err != nil {
			return wrapDBError(err)
		}

		payment := models.Payment{
			Amount:        amount,
			PaymentDate:   now,
			Method:        method,
			PerformedByID: performedBy,
			StudentID:     student.ID,
			ReceiptID:     receipt.ID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return wrapDBError(err)
		}

		updates := map[string]interface{}{
			"amount_paid": newPaid,
			"remaining":   newRemaining,
			"status":      status,
		}
		if err := tx.Model(&ledger).Updates(updates).Error; err != nil {
			return wrapDBError(err)
		}

		if result.WasFirstPayment {
			if _, err := assignFirstPaymentGroup(tx, s.Cfg, &student); err != nil {
				return err
			}
		}

		result.PaymentID = payment.ID
		result.ReceiptID = receipt.ID
		result.ReceiptNumber = receipt.Number
		result.RemainingBalance = newRemaining
		result.SettlementStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// approvedReduction returns the reduction of the student's approved waiver,
// or 0 when none exists. The reduction is a virtual offset in the
// remaining-balance formula, never part of the amount paid.
func approvedReduction(tx *gorm.DB, studentID uint) (float64, error) {
	var waiver models.FeeWaiver
	err := tx.Where("student_id = ? AND status = ?", studentID, models.WaiverApproved).First(&waiver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapDBError(err)
	}
	return waiver.ReductionAmount, nil
}
