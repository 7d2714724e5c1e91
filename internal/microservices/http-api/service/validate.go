package service

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// SubmitReviewInput is the payload of SubmitReview. ReviewText is trimmed before
// validation.
type SubmitReviewInput struct {
	AlbumID    int64  `validate:"required,gt=0"`
	Rating     *int   `validate:"required,min=1,max=5"`
	ReviewText string `validate:"notblank"`
}

// UpdateReviewInput carries the fields to change. Nil fields are left alone.
type UpdateReviewInput struct {
	Rating     *int    `validate:"omitnil,min=1,max=5"`
	ReviewText *string `validate:"omitnil,notblank"`
}

// fieldMessages keys are "<Field>.<tag>"
var fieldMessages = map[string]string{
	"AlbumID.required":    "Album ID is required",
	"AlbumID.gt":          "Album ID is required",
	"Rating.required":     "Rating is required",
	"Rating.min":          "Rating must be between 1 and 5",
	"Rating.max":          "Rating must be between 1 and 5",
	"ReviewText.notblank": "Review text is required",
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// validateInput returns an ErrValidation *Error naming the first failing field.
func validateInput(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return newError(ErrValidation, err.Error())
	}

	fe := fieldErrs[0]
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return newError(ErrValidation, msg)
	}
	return newError(ErrValidation, fe.Field()+" is invalid")
}
