package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	TombolaStatusActive    = "active"
	TombolaStatusCompleted = "completed"
	TombolaStatusCancelled = "cancelled"
)

type Tombola struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TicketPrice int       `json:"ticket_price"`
	DrawDate    time.Time `json:"draw_date"`
	Jackpot     string    `json:"jackpot"`
	MaxWinners  int       `json:"max_winners"`
	Prizes      []Prize   `json:"prizes"`
	Status      string    `json:"status"`

	// Participants is derived from confirmed participant rows,
	// never stored on the tombola itself.
	Participants int `json:"participants"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Prize struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (t *Tombola) IsActive() bool {
	return t.Status == TombolaStatusActive
}

// JackpotNumeric parses the display jackpot ("500 000 FCFA") down to its
// digits. Returns 0 when the jackpot carries no number at all.
func (t *Tombola) JackpotNumeric() int {
	var b strings.Builder
	for _, r := range t.Jackpot {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}

	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}

	return n
}

type GlobalStats struct {
	TotalTombolas     int `json:"total_tombolas"`
	ActiveTombolas    int `json:"active_tombolas"`
	TotalParticipants int `json:"total_participants"`
	TotalRevenue      int `json:"total_revenue"`
}
