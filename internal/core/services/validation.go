package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

var providerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validate is shared by all services; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\x00\r\n")
	})
	_ = v.RegisterValidation("providerid", func(fl validator.FieldLevel) bool {
		return providerIDPattern.MatchString(fl.Field().String())
	})
	return v
}

type ingestInput struct {
	ProjectID  string `validate:"required"`
	Name       string `validate:"required,max=200,displayname"`
	ProviderID string `validate:"required"`
}

type retrieveInput struct {
	ProjectID  string  `validate:"required"`
	Query      string  `validate:"required,max=10000"`
	ProviderID string  `validate:"required"`
	TopK       int     `validate:"min=1,max=100"`
	Diversity  float64 `validate:"min=0,max=1"`
}

type projectInput struct {
	Name        string `validate:"required,max=200,displayname"`
	Description string `validate:"max=2000"`
}

type providerInput struct {
	ID                string  `validate:"required,max=64,providerid"`
	Kind              string  `validate:"required,oneof=ollama openai"`
	BaseURL           string  `validate:"omitempty,url"`
	Dimensions        int     `validate:"min=0"`
	RequestsPerSecond float64 `validate:"min=0"`
}

// validateInput checks s against its struct tags and maps failures to
// domain.ErrInvalidInput with a readable field summary.
func validateInput(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "displayname":
		return field + " must not contain NUL or line breaks"
	case "providerid":
		return field + " may only contain letters, digits, '-' and '_'"
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
