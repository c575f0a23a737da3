package domain

import "time"

type Winner struct {
	ID            uint      `json:"id"`
	ParticipantID uint      `json:"participant_id"`
	TombolaID     uint      `json:"tombola_id"`
	PrizeAmount   string    `json:"prize_amount"`
	PrizeRank     int       `json:"prize_rank"` // 1-based, 1 = first prize

	// BonusCommission is set only when the winning ticket traces back
	// to a coupon redemption.
	BonusCommission int    `json:"bonus_commission,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Participant *Participant `json:"participant,omitempty"`
	Tombola     *Tombola     `json:"tombola,omitempty"`
}
