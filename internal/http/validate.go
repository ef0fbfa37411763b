package http

import (
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shoppyglobe/backend/internal/domain"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// report json names so clients see the fields they sent
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	err := Validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.Categories, fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}
