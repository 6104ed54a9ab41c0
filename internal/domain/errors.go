package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	ErrUnknownCategory      = errors.New("unknown category")
	ErrInvalidListItem      = errors.New("list item must reference a product or carry a name, not both")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidTheme         = errors.New("theme must be light or dark")
	ErrEmptyItemName        = errors.New("item name is required")
	ErrEmptyUpdate          = errors.New("update has no fields")
	ErrDuplicatePriceRecord = errors.New("duplicate price record for product and supermarket")
)

var validate = NewValidator()

// NewValidator returns a validator that also knows the notblank tag
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// FieldError reports which field of an update record failed validation
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
