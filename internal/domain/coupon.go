package domain

import "time"

type Coupon struct {
	ID                 uint   `json:"id"`
	Code               string `json:"code"`
	TombolaID          uint   `json:"tombola_id"`
	CreatorName        string `json:"creator_name"`
	CreatorPhone       string `json:"creator_phone"`
	DiscountPercentage int    `json:"discount_percentage"`

	// Cached aggregates over this coupon's redemption rows. They must
	// always equal a recomputation from coupon_uses.
	TotalUses       int `json:"total_uses"`
	TotalRevenue    int `json:"total_revenue"`
	TotalCommission int `json:"total_commission"`

	IsActive         bool      `json:"is_active"`
	Archived         bool      `json:"archived"`
	ParrainContacted bool      `json:"parrain_contacted"`
	CreatedAt        time.Time `json:"created_at"`

	Tombola *Tombola `json:"tombola,omitempty"`
}

type CouponUse struct {
	ID             uint      `json:"id"`
	CouponID       uint      `json:"coupon_id"`
	ParticipantID  uint      `json:"participant_id"`
	TombolaID      uint      `json:"tombola_id"`
	OriginalPrice  int       `json:"original_price"`
	DiscountAmount int       `json:"discount_amount"`
	FinalPrice     int       `json:"final_price"`

	// CommissionEarned is the per-redemption figure (2x the discount),
	// independent from the tier-driven total on the coupon.
	CommissionEarned int       `json:"commission_earned"`
	UsedAt           time.Time `json:"used_at"`
}

// CouponValidation is the outcome of checking a code against a tombola
// and a participant phone.
type CouponValidation struct {
	Valid          bool    `json:"valid"`
	Reason         string  `json:"reason,omitempty"`
	Coupon         *Coupon `json:"coupon,omitempty"`
	DiscountAmount int     `json:"discount_amount"`
}
