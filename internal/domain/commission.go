package domain

import "time"

type CommissionTier struct {
	ID                   uint    `json:"id"`
	TombolaID            uint    `json:"tombola_id"`
	Name                 string  `json:"name"`
	MinTickets           int     `json:"min_tickets"`
	CommissionPercentage float64 `json:"commission_percentage"`
}

// CommissionBreakdown is the tier-driven figure for one coupon.
type CommissionBreakdown struct {
	Commission   int             `json:"commission"`
	Tier         *CommissionTier `json:"tier"`
	TicketsSold  int             `json:"tickets_sold"`
	TotalRevenue int             `json:"total_revenue"`
}

// SponsorStats is one row of the commission summary: a coupon with its
// aggregates plus any bonus earned through a referred winner.
type SponsorStats struct {
	CouponID        uint      `json:"coupon_id"`
	Code            string    `json:"code"`
	CreatorName     string    `json:"creator_name"`
	CreatorPhone    string    `json:"creator_phone"`
	TotalUses       int       `json:"total_uses"`
	TotalRevenue    int       `json:"total_revenue"`
	TotalCommission int       `json:"total_commission"`
	BonusCommission int       `json:"bonus_commission"`
	CreatedAt       time.Time `json:"created_at"`
}

type CommissionSummary struct {
	TotalCommissions int              `json:"total_commissions"`
	TotalRevenue     int              `json:"total_revenue"`
	TotalTickets     int              `json:"total_tickets"`
	TopSponsors      []SponsorStats   `json:"top_sponsors"`
	Tiers            []CommissionTier `json:"tiers"`
	CouponStats      []SponsorStats   `json:"coupon_stats"`
}

const SponsorPaymentStatusPaid = "paid"

type SponsorPayment struct {
	ID            uint      `json:"id"`
	SponsorID     uint      `json:"sponsor_id"` // the coupon the sponsor owns
	TombolaID     uint      `json:"tombola_id"`
	Amount        int       `json:"amount"`
	SponsorName   string    `json:"sponsor_name"`
	SponsorPhone  string    `json:"sponsor_phone"`
	PaymentStatus string    `json:"payment_status"`
	PaymentDate   time.Time `json:"payment_date"`
	ReceiptNumber string    `json:"receipt_number"`
}

// Receipt is the data needed to render a commission receipt PDF.
type Receipt struct {
	ReceiptNumber   string    `json:"receipt_number"`
	SponsorName     string    `json:"sponsor_name"`
	SponsorPhone    string    `json:"sponsor_phone"`
	PaymentDate     time.Time `json:"payment_date"`
	TombolaTitle    string    `json:"tombola_title"`
	TicketsSold     int       `json:"tickets_sold"`
	BaseCommission  int       `json:"base_commission"`
	BonusCommission int       `json:"bonus_commission"`
	Total           int       `json:"total"`
}
