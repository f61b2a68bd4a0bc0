package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// Waiver decision actions accepted by Resolve.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// WaiverService handles the fee-waiver ("prise en charge") lifecycle:
// created pending, resolved exactly once to approved or rejected.
type WaiverService struct {
	DB *gorm.DB
}

func NewWaiverService(db *gorm.DB) *WaiverService {
	return &WaiverService{DB: db}
}

// WaiverResult is returned to the HTTP layer after a request.
type WaiverResult struct {
	WaiverID          uint    `json:"waiverId"`
	Status            string  `json:"status"`
	ComputedReduction float64 `json:"computedReduction"`
}

// ResolutionResult is returned after a decision. Balance fields are only
// set on approval; a rejection leaves the ledger untouched.
type ResolutionResult struct {
	Status              string   `json:"status"`
	NewRemainingBalance *float64 `json:"newRemainingBalance,omitempty"`
	NewSettlementStatus *string  `json:"newSettlementStatus,omitempty"`
}

// Request creates a pending waiver for a student. The reduction amount is
// snapshotted from the ledger's total due at request time and never
// recomputed. A student may hold at most one pending-or-approved waiver.
func (s *WaiverService) Request(studentID uint, waiverType string, percentage float64, reference string, requestedBy uint) (*WaiverResult, error) {
	if percentage <= 0 || percentage > 100 || math.IsNaN(percentage) {
		return nil, ErrInvalidPercentage
	}

	var result WaiverResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the student row so two concurrent requests for the same
		// student cannot both pass the outstanding-waiver check.
		var student models.Student
		if err := forUpdate(tx).First(&student, studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return wrapDBError(err)
		}

		var ledger models.TuitionLedger
		if err := tx.First(&ledger, student.LedgerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return wrapDBError(err)
		}

		var outstanding int64
		if err := tx.Model(&models.FeeWaiver{}).
			Where("student_id = ? AND status IN ?", student.ID, []string{models.WaiverPending, models.WaiverApproved}).
			Count(&outstanding).Error; err != nil {
			return wrapDBError(err)
		}
		if outstanding > 0 {
			return ErrWaiverAlreadyActive
		}

		reduction := math.Round(ledger.TotalDue*percentage) / 100

		waiver := models.FeeWaiver{
			StudentID:       student.ID,
			Type:            waiverType,
			Reference:       reference,
			Percentage:      percentage,
			ReductionAmount: reduction,
			Status:          models.WaiverPending,
			RequestedByID:   requestedBy,
		}
		if err := tx.Create(&waiver).Error; err != nil {
			return wrapDBError(err)
		}

		result = WaiverResult{
			WaiverID:          waiver.ID,
			Status:            waiver.Status,
			ComputedReduction: reduction,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Resolve approves or rejects a pending waiver. Approval recomputes the
// remaining balance with the snapshotted reduction as a virtual offset;
// rejection only stamps the decision. Either way the waiver leaves pending
// exactly once.
func (s *WaiverService) Resolve(waiverID uint, action string, approverID uint, rejectionReason string) (*ResolutionResult, error) {
	if action == ActionReject && strings.TrimSpace(rejectionReason) == "" {
		return nil, ErrRejectionReasonRequired
	}

	var result ResolutionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var waiver models.FeeWaiver
		if err := forUpdate(tx).First(&waiver, waiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWaiverNotFound
			}
			return wrapDBError(err)
		}
		if waiver.Status != models.WaiverPending {
			return ErrWaiverNotPending
		}

		now := time.Now()

		switch action {
		case ActionApprove:
			var student models.Student
			if err := tx.First(&student, waiver.StudentID).Error; err != nil {
				return wrapDBError(err)
			}
			var ledger models.TuitionLedger
			if err := forUpdate(tx).First(&ledger, student.LedgerID).Error; err != nil {
				return wrapDBError(err)
			}

			newRemaining := ledger.TotalDue - ledger.AmountPaid - waiver.ReductionAmount
			if newRemaining < -models.SettlementTolerance {
				return ErrWaiverExceedsBalance
			}

			status := models.LedgerUnsettled
			if models.Settled(newRemaining) {
				newRemaining = 0
				status = models.LedgerSettled
			}

			updates := map[string]interface{}{
				"remaining": newRemaining,
				"status":    status,
			}
			if err := tx.Model(&ledger).Updates(updates).Error; err != nil {
				return wrapDBError(err)
			}

			waiver.Status = models.WaiverApproved
			waiver.DecidedByID = &approverID
			waiver.DecidedAt = &now
			if err := tx.Save(&waiver).Error; err != nil {
				return wrapDBError(err)
			}

			result = ResolutionResult{
				Status:              waiver.Status,
				NewRemainingBalance: &newRemaining,
				NewSettlementStatus: &status,
			}

		case ActionReject:
			waiver.Status = models.WaiverRejected
			waiver.DecidedByID = &approverID
			waiver.DecidedAt = &now
			waiver.RejectionReason = rejectionReason
			if err := tx.Save(&waiver).Error; err != nil {
				return wrapDBError(err)
			}
			result = ResolutionResult{Status: waiver.Status}

		default:
			return &Error{CodeInvalidAction, "invalid decision: " + action}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
