package helper

import (
	"fmt"
	"reflect"
	"strings"

	"app-registry-cms/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

// NewValidator returns a validator with English messages registered. Fields
// are reported by their json name.
func NewValidator() (*validator.Validate, ut.Translator, error) {
	english := en.New()
	uni := ut.New(english, english)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, nil, fmt.Errorf("translator %q not found", "en")
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("register translations: %w", err)
	}
	return validate, trans, nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// ValidateStruct runs struct validation and converts failures into a
// *models.ValidationError keyed by json field name.
func ValidateStruct(validate *validator.Validate, trans ut.Translator, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	verr := models.NewValidationError()
	for _, fe := range fieldErrors {
		verr.Add(fe.Field(), fe.Translate(trans))
	}
	return verr
}

// Validator pairs a validator with the translator for its messages.
type Validator struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

func NewStructValidator() (*Validator, error) {
	validate, trans, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Validator{Validate: validate, Translator: trans}, nil
}

func (v *Validator) Struct(s interface{}) error {
	return ValidateStruct(v.Validate, v.Translator, s)
}
