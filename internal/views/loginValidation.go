package views

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"chessgame/internal/models"
)

const (
	FieldEmail    = "email"
	FieldPassword = "password"

	// PasswordMinLength must stay in sync with the min tag on models.Credentials.
	PasswordMinLength = 6
)

const (
	MsgEmailRequired    = "Email is a required field"
	MsgEmailInvalid     = "Email must be a valid email"
	MsgPasswordRequired = "Password is a required field"
	MsgPasswordTooShort = "Password must be at least 6 characters"
)

// fieldMessages maps a field and the failing validator tag to the text shown under the input.
var fieldMessages = map[string]map[string]string{
	FieldEmail: {
		"required": MsgEmailRequired,
		"email":    MsgEmailInvalid,
	},
	FieldPassword: {
		"required": MsgPasswordRequired,
		"min":      MsgPasswordTooShort,
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// Valid reports whether no field failed validation.
func (fe FieldErrors) Valid() bool { return len(fe) == 0 }

// Get returns the message for field, or an empty string.
func (fe FieldErrors) Get(field string) string { return fe[field] }

// ValidateCredentials checks the credentials against the login form rules.
func ValidateCredentials(creds models.Credentials) FieldErrors {
	errs := FieldErrors{}

	err := validate.Struct(creds)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// only reachable for a non-struct argument
		errs[FieldEmail] = err.Error()
		return errs
	}

	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		msg, ok := fieldMessages[field][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		errs[field] = msg
	}
	return errs
}
