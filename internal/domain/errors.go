package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicate          = errors.New("duplicate resource")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrVersionConflict    = errors.New("invoice was modified concurrently")
)

// RuleCode identifies a business-rule violation. The set is closed: handlers
// and clients switch on these codes.
type RuleCode string

const (
	RuleInvalidState      RuleCode = "INVALID_STATE"
	RuleAlreadySettled    RuleCode = "ALREADY_SETTLED"
	RuleInvalidAmount     RuleCode = "INVALID_AMOUNT"
	RuleExceedsBalance    RuleCode = "EXCEEDS_BALANCE"
	RuleFutureDated       RuleCode = "FUTURE_DATED"
	RuleIllegalTransition RuleCode = "ILLEGAL_TRANSITION"
	RuleLocked            RuleCode = "LOCKED"
	RuleNotDeletable      RuleCode = "NOT_DELETABLE"
	RuleDuplicateNumber   RuleCode = "DUPLICATE_NUMBER"
	RuleEmptyLineItems    RuleCode = "EMPTY_LINE_ITEMS"
	RuleNegativeBalance   RuleCode = "NEGATIVE_BALANCE"
)

// RuleViolation is a rejected operation that left the invoice unchanged.
// It is a value, not a panic: use cases return it and handlers map it to
// 409/422 responses.
type RuleViolation struct {
	Code    RuleCode
	Message string
}

func (e *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Violation builds a RuleViolation with a formatted message.
func Violation(code RuleCode, format string, args ...any) error {
	return &RuleViolation{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsRule reports whether err is a RuleViolation with the given code.
func IsRule(err error, code RuleCode) bool {
	var rv *RuleViolation
	return errors.As(err, &rv) && rv.Code == code
}

// AsRule extracts the RuleViolation from err, if any.
func AsRule(err error) (*RuleViolation, bool) {
	var rv *RuleViolation
	ok := errors.As(err, &rv)
	return rv, ok
}
