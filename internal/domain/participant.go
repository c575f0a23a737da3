package domain

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusFailed    = "failed"
)

type Participant struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	TombolaID         uint      `json:"tombola_id"`
	TicketNumber      string    `json:"ticket_number"`
	PaymentStatus     string    `json:"payment_status"`
	AirtelMoneyNumber string    `json:"airtel_money_number"`
	PaymentRef        string    `json:"payment_ref,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// Populated by join-fetches for the admin listing.
	CouponUse *CouponUse `json:"coupon_use,omitempty"`
	Winner    *Winner    `json:"winner,omitempty"`
}

// Ticket is the data a participant needs to render their ticket PDF.
// Layout is a client concern.
type Ticket struct {
	ParticipantID uint      `json:"participant_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	TicketNumber  string    `json:"ticket_number"`
	TombolaTitle  string    `json:"tombola_title"`
	DrawDate      time.Time `json:"draw_date"`
	OriginalPrice int       `json:"original_price"`
	Discount      int       `json:"discount"`
	FinalPrice    int       `json:"final_price"`
	CouponCode    string    `json:"coupon_code,omitempty"`
	PaymentRef    string    `json:"payment_ref"`
}
