package validators

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
	})
	return validate
}

// IsEmail checks the address syntax only.
func IsEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && instance().Var(email, "email") == nil
}

// IsPhone accepts digits with common separators and an optional leading
// plus, and at least six digits.
func IsPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}
	digits := 0
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '/' || r == '.':
		default:
			return false
		}
	}
	return digits >= 6 && digits <= 15
}

type ContactInput struct {
	Name    string `validate:"required,max=120"`
	Email   string `validate:"omitempty,email"`
	Phone   string `validate:"omitempty,phone"`
	Message string `validate:"required,max=2000"`
}

// Normalize trims every field.
func (in ContactInput) Normalize() ContactInput {
	return ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Message: strings.TrimSpace(in.Message),
	}
}

// ValidateContact requires a name, a message and at least one way back.
func ValidateContact(in ContactInput) bool {
	in = in.Normalize()
	if in.Email == "" && in.Phone == "" {
		return false
	}
	return instance().Struct(in) == nil
}

type TimeOffInput struct {
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
	Reason    string `validate:"max=255"`
}

// ValidateTimeOff checks both dates and that the range is not reversed.
func ValidateTimeOff(in TimeOffInput) bool {
	if instance().Struct(in) != nil {
		return false
	}
	return in.EndDate >= in.StartDate
}
