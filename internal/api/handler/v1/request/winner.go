package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type AttachWinnerPhotoRequest struct {
	PhotoURL string `json:"photo_url"`
}

func (req *AttachWinnerPhotoRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PhotoURL, validation.Required, is.URL),
	)
}
