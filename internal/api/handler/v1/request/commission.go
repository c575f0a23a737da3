package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type TierPayload struct {
	Name                 string  `json:"name"`
	MinTickets           int     `json:"min_tickets"`
	CommissionPercentage float64 `json:"commission_percentage"`
}

type ReplaceTiersRequest struct {
	Tiers []TierPayload `json:"tiers"`
}

func (req *ReplaceTiersRequest) Validate() error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.Tiers, validation.Required),
	); err != nil {
		return err
	}

	for i := range req.Tiers {
		if err := validation.ValidateStruct(
			&req.Tiers[i],
			validation.Field(&req.Tiers[i].Name, validation.Required, validation.Length(1, 50)),
			validation.Field(&req.Tiers[i].MinTickets, validation.Min(0)),
			validation.Field(&req.Tiers[i].CommissionPercentage, validation.Required, validation.Min(0.0), validation.Max(100.0)),
		); err != nil {
			return err
		}
	}

	return nil
}
