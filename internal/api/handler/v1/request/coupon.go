package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateCouponRequest struct {
	TombolaID          uint   `json:"tombola_id"`
	CreatorName        string `json:"creator_name"`
	CreatorPhone       string `json:"creator_phone"`
	DiscountPercentage int    `json:"discount_percentage"`
}

func (req *CreateCouponRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TombolaID, validation.Required),
		validation.Field(&req.CreatorName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.CreatorPhone, validation.Required, validation.Match(phoneRegex)),
		validation.Field(&req.DiscountPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

type UpdateCouponDiscountRequest struct {
	DiscountPercentage int `json:"discount_percentage"`
}

func (req *UpdateCouponDiscountRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DiscountPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

type ParrainContactedRequest struct {
	Contacted bool `json:"contacted"`
}
