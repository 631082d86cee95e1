package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"social-hub-backend/internal/common/validation"
)

// RegisterValidators добавляет доменные теги в валидатор gin
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("e164orlocal", func(fl validator.FieldLevel) bool {
		return validation.ValidatePhoneNumber(fl.Field().String()).IsValid
	}); err != nil {
		return err
	}

	return v.RegisterValidation("deviceid", func(fl validator.FieldLevel) bool {
		_, err := uuid.Parse(fl.Field().String())
		return err == nil
	})
}
