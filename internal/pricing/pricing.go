// Package pricing turns a trip's price sheet, the passenger count, the
// chosen payment type and the active discounts into a committed breakdown of
// amounts. It performs no I/O and holds no state.
package pricing

import (
	"math"
	"time"

	"github.com/jinzhu/now"
	"github.com/tripveda/booking-backend/internal/models"
)

// QuoteInput is everything the calculator needs for one breakdown
type QuoteInput struct {
	// TripPrice is the original per-passenger price
	TripPrice float64
	// EarlyBirdPrice, when set together with EarlyBirdDeadline, expresses a
	// reduced per-passenger price valid through the deadline day
	EarlyBirdPrice    *float64
	EarlyBirdDeadline *time.Time
	// SeatLockAmount is the trip's explicit per-passenger lock amount;
	// when nil the lock defaults to 20% of the base, rounded up
	SeatLockAmount *float64
	SeatLockMode   models.SeatLockMode
	PassengerCount int
	PaymentType    models.PaymentType
	Coupon         *models.Coupon
	// ReferralEligible applies the flat first-booking discount; it is
	// ignored whenever a coupon is present
	ReferralEligible bool
	ReferralAmount   float64
	WalletBalance    float64
	// Now anchors the early-bird deadline check
	Now time.Time
}

// Breakdown is the committed amount breakdown. It is recomputed on every
// relevant state change and never persisted as truth.
type Breakdown struct {
	BasePrice       float64 `json:"base_price"`
	DiscountAmount  float64 `json:"discount_amount"`
	DiscountedTotal float64 `json:"discounted_total"`

	EarlyBirdDiscount float64 `json:"early_bird_discount"`
	ReferralDiscount  float64 `json:"referral_discount"`
	CouponDiscount    float64 `json:"coupon_discount"`

	SeatLockToPay  float64 `json:"seat_lock_to_pay"`
	RemainingToPay float64 `json:"remaining_to_pay"`

	// FinalAmountToPay is the amount due now before the wallet debit
	FinalAmountToPay float64 `json:"final_amount_to_pay"`
	WalletAmount     float64 `json:"wallet_amount"`
	// NetPayable is what actually gets charged: FinalAmountToPay - WalletAmount
	NetPayable float64 `json:"net_payable"`

	// PaymentType echoes the input unless auto-adjust forced it back to full
	PaymentType models.PaymentType `json:"payment_type"`
}

// Quote computes the full breakdown for the given input
func Quote(in QuoteInput) Breakdown {
	count := in.PassengerCount
	if count < 1 {
		count = 1
	}

	basePrice := in.TripPrice * float64(count)

	// Early bird enters the stack as an equivalent percentage of the
	// original price rather than a separate subtraction, so it compounds
	// with the coupon by addition of percentages.
	earlyBirdPct := 0.0
	if eb := earlyBirdActive(in); eb != nil && in.TripPrice > 0 {
		earlyBirdPct = (in.TripPrice - *eb) / in.TripPrice * 100
	}

	// Referral first, and only when no coupon is present
	referralDiscount := 0.0
	if in.ReferralEligible && in.Coupon == nil && in.ReferralAmount > 0 {
		referralDiscount = math.Min(in.ReferralAmount, basePrice)
	}
	amountAfterReferral := basePrice - referralDiscount

	earlyBirdDiscount := amountAfterReferral * earlyBirdPct / 100
	couponDiscount := 0.0
	if in.Coupon != nil {
		switch in.Coupon.Type {
		case models.DiscountTypePercentage:
			couponDiscount = amountAfterReferral * in.Coupon.Value / 100
		case models.DiscountTypeFlat:
			couponDiscount = math.Min(in.Coupon.Value, amountAfterReferral)
		}
	}

	discountedTotal := amountAfterReferral - earlyBirdDiscount - couponDiscount
	if discountedTotal < 0 {
		discountedTotal = 0
	}

	b := Breakdown{
		BasePrice:         basePrice,
		EarlyBirdDiscount: earlyBirdDiscount,
		ReferralDiscount:  referralDiscount,
		CouponDiscount:    couponDiscount,
		DiscountAmount:    referralDiscount + earlyBirdDiscount + couponDiscount,
		DiscountedTotal:   discountedTotal,
		PaymentType:       in.PaymentType,
	}

	seatLockPrice := seatLockPrice(in, basePrice, count)

	switch in.PaymentType {
	case models.PaymentTypeSeatLock:
		switch in.SeatLockMode {
		case models.SeatLockModeAutoAdjust:
			if discountedTotal >= seatLockPrice {
				b.SeatLockToPay = seatLockPrice
				b.RemainingToPay = discountedTotal - seatLockPrice
			} else {
				// Discount already pushed the bill below the lock
				// threshold: pay the reduced total now, nothing later.
				// A "later balance of zero" seat lock is not a choice
				// worth presenting, so the payment type flips to full.
				b.SeatLockToPay = discountedTotal
				b.RemainingToPay = 0
				b.PaymentType = models.PaymentTypeFull
			}
		default: // fixed
			b.SeatLockToPay = math.Min(seatLockPrice, discountedTotal)
			b.RemainingToPay = discountedTotal - b.SeatLockToPay
		}
		b.FinalAmountToPay = b.SeatLockToPay
	default:
		b.PaymentType = models.PaymentTypeFull
		b.FinalAmountToPay = discountedTotal
		b.RemainingToPay = 0
	}

	// Wallet applies last and only against the amount due now
	b.WalletAmount = math.Min(math.Max(in.WalletBalance, 0), b.FinalAmountToPay)
	b.NetPayable = b.FinalAmountToPay - b.WalletAmount

	return b
}

// earlyBirdActive returns the early-bird per-passenger price when the
// deadline has not passed, treating the deadline day as inclusive.
func earlyBirdActive(in QuoteInput) *float64 {
	if in.EarlyBirdPrice == nil || in.EarlyBirdDeadline == nil {
		return nil
	}
	if *in.EarlyBirdPrice <= 0 || *in.EarlyBirdPrice >= in.TripPrice {
		return nil
	}
	cutoff := now.With(*in.EarlyBirdDeadline).EndOfDay()
	if in.Now.After(cutoff) {
		return nil
	}
	return in.EarlyBirdPrice
}

func seatLockPrice(in QuoteInput, basePrice float64, count int) float64 {
	if in.SeatLockAmount != nil && *in.SeatLockAmount > 0 {
		return *in.SeatLockAmount * float64(count)
	}
	return math.Ceil(basePrice * 0.20)
}
