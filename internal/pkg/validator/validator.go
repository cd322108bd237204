package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// geohashAlphabet - base32 алфавит geohash (без a, i, l, o)
const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("geohash", validateGeohash)
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}

func validateGeohash(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || len(s) > 12 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(geohashAlphabet, r) {
			return false
		}
	}
	return true
}
