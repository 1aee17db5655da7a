package models

import "fmt"

// ValidationError blocks step advancement; it is resolved locally and is
// never sent to a collaborator.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// CouponError means a code was invalid, expired or inapplicable. The coupon
// application fails closed: prior discount state is left unchanged.
type CouponError struct {
	Code    string
	Message string
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Message)
}

// NetworkError wraps any collaborator call failure. The operation that
// produced it is retryable.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// PaymentVerificationError is raised after a real money movement when the
// gateway signature or amount does not check out. It is not silently
// retryable: the user must keep the payment id and contact support.
type PaymentVerificationError struct {
	OrderID   string
	PaymentID string
	Message   string
}

func (e *PaymentVerificationError) Error() string {
	return fmt.Sprintf("payment verification failed for payment %s: %s; keep this payment id and contact support", e.PaymentID, e.Message)
}

// MaintenanceError rejects an action before any network call is made
type MaintenanceError struct{}

func (e *MaintenanceError) Error() string {
	return "bookings are temporarily paused for maintenance, please try again later"
}
