package models

// PaymentType is how the traveller chose to pay
type PaymentType string

const (
	// PaymentTypeFull pays the entire discounted total now
	PaymentTypeFull PaymentType = "full"
	// PaymentTypeSeatLock pays a partial amount now to hold the seats
	PaymentTypeSeatLock PaymentType = "seat_lock"
)

// BookingStatus mirrors the booking service's lifecycle states
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaymentStatus mirrors the booking service's payment verification states
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// AppliedDiscounts is the discount summary attached to a booking request
type AppliedDiscounts struct {
	EarlyBird float64 `json:"early_bird"`
	Referral  float64 `json:"referral"`
	Coupon    float64 `json:"coupon"`
	// CouponCode is set only when a coupon contributed to the total
	CouponCode string `json:"coupon_code,omitempty"`
}

// CreateBookingRequest is the payload the core assembles for both the direct
// creation call and the gateway pre-book call. The gateway path omits the
// transaction id.
type CreateBookingRequest struct {
	TripID              string           `json:"trip_id"`
	Contact             ContactDetails   `json:"contact_details"`
	Passengers          []Passenger      `json:"passengers"`
	PaymentType         PaymentType      `json:"payment_type"`
	Amount              float64          `json:"amount"`
	SeatLockAmount      float64          `json:"seat_lock_amount"`
	RemainingAmount     float64          `json:"remaining_amount"`
	WalletUsedAmount    float64          `json:"wallet_used_amount"`
	Discounts           AppliedDiscounts `json:"discounts"`
	TransactionID       string           `json:"transaction_id,omitempty"`
	SpecialRequirements string           `json:"special_requirements,omitempty"`
}

// CreateBookingResponse carries the server-assigned booking id
type CreateBookingResponse struct {
	BookingID string `json:"booking_id"`
}

// GatewayOrder is the payment-gateway order created for the amount due now
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

// CheckoutResult is what the gateway's client-side checkout hands back on
// user-side success
type CheckoutResult struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// BookingContext is the per-user pricing context the booking service owns:
// whether the referral/first-booking discount applies and the wallet balance.
type BookingContext struct {
	ReferralEligible bool    `json:"referral_eligible"`
	WalletBalance    float64 `json:"wallet_balance"`
}
