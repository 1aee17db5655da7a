package models

// DiscountType is how a coupon's value is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

// Coupon is an applied discount code, at most one per booking.
// A coupon and the referral discount are mutually exclusive by business
// rule, not by data shape.
type Coupon struct {
	Code        string       `json:"code"`
	Type        DiscountType `json:"type"`
	Value       float64      `json:"value"`
	Description string       `json:"description,omitempty"`
}

// CouponResult is the coupon service's response to an apply call
type CouponResult struct {
	Coupon         Coupon  `json:"coupon"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}
