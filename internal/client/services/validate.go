package services

import (
	"fmt"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type credentials struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required"`
}

func validateCredentials(username string, password []byte) error {
	if err := validate.Struct(credentials{Username: username, Password: string(password)}); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}
	return nil
}

func validateFilter(f models.FilterCriteria) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return fmt.Errorf("%w: date from is after date to", ErrInvalidFilter)
	}
	return nil
}
