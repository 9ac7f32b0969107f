package service

import (
	"errors"
	"strconv"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
)

// User-facing texts for the author login and registration forms.
const (
	MsgAllFieldsRequired  = "Сва поља су обавезна"
	MsgPasswordsMismatch  = "Лозинке се не подударају"
	MsgPasswordTooShort   = "Лозинка мора имати најмање 6 карактера"
	MsgInvalidLogin       = "Неисправна е-адреса или лозинка"
	MsgLoginFailed        = "Грешка при пријављивању. Покушајте поново."
	MsgRegistered         = "Успешно сте се регистровали! Проверите е-пошту за потврду налога."
	MsgRegistrationFailed = "Грешка при регистрацији. Покушајте поново."
)

type LoginForm struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegistrationForm needs a password of at least six characters. Login sends
// whatever it gets.
type RegistrationForm struct {
	Name            string `json:"name"             validate:"required"`
	Email           string `json:"email"            validate:"required"`
	Password        string `json:"password"         validate:"required,utf16min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	Bio             string `json:"bio,omitempty"`
	Avatar          string `json:"avatar,omitempty"`
}

// FormError is a validation failure carrying the text to show the user.
type FormError struct {
	Message string
}

func (e *FormError) Error() string { return e.Message }

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("utf16min", utf16Min); err != nil {
		panic(err)
	}
	return v
}

// utf16Min measures length in UTF-16 code units, the way browsers and the
// auth provider count it. An emoji is two units.
func utf16Min(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(utf16.Encode([]rune(fl.Field().String()))) >= n
}

// ValidateLogin checks the login form before any provider call.
func ValidateLogin(f LoginForm) error {
	return formError(formValidator.Struct(f))
}

// ValidateRegistration checks the registration form before any provider
// call. Missing fields are reported first, then a password mismatch, then a
// short password.
func ValidateRegistration(f RegistrationForm) error {
	return formError(formValidator.Struct(f))
}

// messagePriority orders validator tags by which message wins when a form
// fails several checks at once.
var messagePriority = []struct {
	tag string
	msg string
}{
	{"required", MsgAllFieldsRequired},
	{"eqfield", MsgPasswordsMismatch},
	{"utf16min", MsgPasswordTooShort},
}

func formError(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failed := make(map[string]bool, len(ve))
	for _, fe := range ve {
		failed[fe.Tag()] = true
	}
	for _, p := range messagePriority {
		if failed[p.tag] {
			return &FormError{Message: p.msg}
		}
	}
	return &FormError{Message: MsgAllFieldsRequired}
}
