package services

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validateDraft проверяет черновик по тегам validate
func validateDraft(draft interface{}) error {
	validateOnce.Do(func() { validate = validator.New(validator.WithRequiredStructEnabled()) })
	if err := validate.Struct(draft); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
