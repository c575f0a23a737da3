package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type PrizePayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CreateTombolaRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	TicketPrice int            `json:"ticket_price"`
	DrawDate    time.Time      `json:"draw_date"`
	Jackpot     string         `json:"jackpot"`
	MaxWinners  int            `json:"max_winners"`
	Prizes      []PrizePayload `json:"prizes"`
}

func (req *CreateTombolaRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 120)),
		validation.Field(&req.TicketPrice, validation.Required, validation.Min(1)),
		validation.Field(&req.DrawDate, validation.Required),
		validation.Field(&req.MaxWinners, validation.Min(1)),
	)
}

type UpdateTombolaRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	TicketPrice int            `json:"ticket_price"`
	DrawDate    time.Time      `json:"draw_date"`
	Jackpot     string         `json:"jackpot"`
	MaxWinners  int            `json:"max_winners"`
	Prizes      []PrizePayload `json:"prizes"`
}

func (req *UpdateTombolaRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 120)),
		validation.Field(&req.TicketPrice, validation.Required, validation.Min(1)),
		validation.Field(&req.DrawDate, validation.Required),
		validation.Field(&req.MaxWinners, validation.Min(1)),
	)
}
