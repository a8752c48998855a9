// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bizdir/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("business_category", validateBusinessCategory)
		_ = v.RegisterValidation("business_status", validateBusinessStatus)
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("sort_by", validateSortBy)
	}
}

func validateBusinessCategory(fl validator.FieldLevel) bool {
	_, ok := models.ParseBusinessCategory(fl.Field().String())
	return ok
}

func validateBusinessStatus(fl validator.FieldLevel) bool {
	_, ok := models.ParseBusinessStatus(fl.Field().String())
	return ok
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).Valid()
}

func validateSortBy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "rating", "createdAt":
		return true
	}
	return false
}
