package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string   `json:"error"`
	Code          string   `json:"code,omitempty"`
	Message       string   `json:"message,omitempty"`
	Fields        []string `json:"fields,omitempty"`
	IDs           []int64  `json:"ids,omitempty"`
	CorrelationID string   `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeTerminalStatus       = "TERMINAL_STATUS"
	ErrCodeVoucherCodeTaken     = "VOUCHER_CODE_TAKEN"
	ErrCodeVoucherInUse         = "VOUCHER_IN_USE"
	ErrCodeVoucherInvalid       = "VOUCHER_INVALID"
	ErrCodeVoucherExhausted     = "VOUCHER_EXHAUSTED"
	ErrCodeVoucherAlreadyUsed   = "VOUCHER_ALREADY_USED"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeAddressInUse         = "ADDRESS_IN_USE"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
	ErrCodeDatasetInconsistency = "DATASET_INCONSISTENT"
)

// DomainError is a business error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidStatus      = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrTerminalStatus     = NewDomainError(ErrCodeTerminalStatus, "Order is in a final status and cannot change")
	ErrVoucherCodeTaken   = NewDomainError(ErrCodeVoucherCodeTaken, "Voucher code already exists")
	ErrVoucherInUse       = NewDomainError(ErrCodeVoucherInUse, "Cannot delete a voucher that has been used")
	ErrVoucherExhausted   = NewDomainError(ErrCodeVoucherExhausted, "Voucher usage limit reached")
	ErrVoucherAlreadyUsed = NewDomainError(ErrCodeVoucherAlreadyUsed, "You have already used this voucher")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "You do not have access to this resource")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Quantity exceeds available stock")
	ErrAddressInUse       = NewDomainError(ErrCodeAddressInUse, "Shipping address is referenced by an order")
)

// ValidationError reports every offending field or id of a request at once.
type ValidationError struct {
	Code    string
	Message string
	Fields  []string
	IDs     []int64
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields, ", "))
	}
	if len(e.IDs) > 0 {
		ids := make([]string, len(e.IDs))
		for i, id := range e.IDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(ids, ", "))
		b.WriteString("]")
	}
	return b.String()
}

// NewFieldError returns a ValidationError naming the offending fields.
func NewFieldError(message string, fields ...string) *ValidationError {
	return &ValidationError{Code: ErrCodeValidation, Message: message, Fields: fields}
}

// NewUnknownProductsError returns a ValidationError naming every unknown
// product variant id.
func NewUnknownProductsError(ids []int64) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeProductNotFound,
		Message: "Product variants not found",
		IDs:     ids,
	}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError returns a NotFoundError for an entity keyed by id.
func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}
