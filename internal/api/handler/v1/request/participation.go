package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ]{5,17}$`)

type ParticipateRequest struct {
	TombolaID         uint   `json:"tombola_id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	AirtelMoneyNumber string `json:"airtel_money_number"`
	CouponCode        string `json:"coupon_code"`
}

func (req *ParticipateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TombolaID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneRegex)),
		validation.Field(&req.AirtelMoneyNumber, validation.Required, validation.Match(phoneRegex)),
	)
}

type ValidateCouponRequest struct {
	Code      string `json:"code"`
	TombolaID uint   `json:"tombola_id"`
	Phone     string `json:"phone"`
}

func (req *ValidateCouponRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(2, 20)),
		validation.Field(&req.TombolaID, validation.Required),
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneRegex)),
	)
}
