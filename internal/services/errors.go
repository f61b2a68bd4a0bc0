package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Code identifies one failure kind of the payment/waiver core. Handlers map
// codes to HTTP statuses; the services themselves never touch HTTP.
type Code string

const (
	CodeInvalidAmount           Code = "INVALID_AMOUNT"
	CodeStudentNotFound         Code = "STUDENT_NOT_FOUND"
	CodeOverpayment             Code = "OVERPAYMENT"
	CodeWaiverAlreadyActive     Code = "WAIVER_ALREADY_ACTIVE"
	CodeInvalidPercentage       Code = "INVALID_PERCENTAGE"
	CodeWaiverNotFound          Code = "WAIVER_NOT_FOUND"
	CodeWaiverNotPending        Code = "WAIVER_NOT_PENDING"
	CodeWaiverExceedsBalance    Code = "WAIVER_EXCEEDS_BALANCE"
	CodeRejectionReasonRequired Code = "REJECTION_REASON_REQUIRED"
	CodeInvalidAction           Code = "INVALID_ACTION"
	CodeGroupCapacityExhausted  Code = "GROUP_CAPACITY_EXHAUSTED"
	CodeConcurrencyConflict     Code = "CONCURRENCY_CONFLICT"
)

// Error is a typed core failure. Every error aborts the enclosing
// transaction; nothing is retried inside the core.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrInvalidAmount           = &Error{CodeInvalidAmount, "payment amount must be a positive number"}
	ErrStudentNotFound         = &Error{CodeStudentNotFound, "student or tuition ledger not found"}
	ErrOverpayment             = &Error{CodeOverpayment, "payment exceeds the remaining tuition balance"}
	ErrWaiverAlreadyActive     = &Error{CodeWaiverAlreadyActive, "student already has a pending or approved waiver"}
	ErrInvalidPercentage       = &Error{CodeInvalidPercentage, "waiver percentage must be between 0 and 100"}
	ErrWaiverNotFound          = &Error{CodeWaiverNotFound, "fee waiver not found"}
	ErrWaiverNotPending        = &Error{CodeWaiverNotPending, "fee waiver has already been resolved"}
	ErrWaiverExceedsBalance    = &Error{CodeWaiverExceedsBalance, "waiver reduction exceeds the remaining balance"}
	ErrRejectionReasonRequired = &Error{CodeRejectionReasonRequired, "a rejection reason is required"}
	ErrGroupCapacityExhausted  = &Error{CodeGroupCapacityExhausted, "no group with spare capacity and group creation is capped"}
	ErrConcurrencyConflict     = &Error{CodeConcurrencyConflict, "transaction conflict, retry the request"}
)

// Serialization failures from Postgres surface as a retryable
// ConcurrencyConflict instead of a bare driver error.
func wrapDBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return ErrConcurrencyConflict
		}
	}
	return err
}
