package booking

import (
	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/domain/availability"
	"github.com/BruksfildServices01/meister-web/internal/httperr"
)

// Business error codes raised by the wizard.
const (
	ErrMissingFields   = "missing_fields"
	ErrInvalidTime     = "invalid_time"
	ErrBarberRequired  = "barber_required"
	ErrUnknownBarber   = "unknown_barber"
	ErrUnknownService  = "unknown_service"
	ErrDateRequired    = "date_required"
	ErrDateUnavailable = "date_unavailable"
	ErrSlotUnavailable = "slot_unavailable"
)

// Error categories shown to the visitor.
const (
	CategoryMissingFields = "missing_fields"
	CategoryInvalidTime   = "invalid_time"
	CategoryServer        = "server"
	CategoryNetwork       = "network"
	CategoryValidation    = "validation"
)

// Classify maps err to a category and, for server rejections, the message
// the backend gave.
func Classify(err error) (category, message string) {
	switch {
	case err == nil:
		return "", ""
	case httperr.IsBusiness(err, ErrMissingFields):
		return CategoryMissingFields, ""
	case httperr.IsBusiness(err, ErrInvalidTime):
		return CategoryInvalidTime, ""
	}

	if httperr.CodeOf(err) != "" {
		return CategoryValidation, ""
	}
	if apiErr, ok := backend.IsAPIError(err); ok {
		return CategoryServer, apiErr.Message
	}
	return CategoryNetwork, ""
}

// Message renders err for the visitor through t.
func Message(err error, t availability.Translator) string {
	category, msg := Classify(err)
	switch category {
	case "":
		return ""
	case CategoryMissingFields:
		return t.T("booking.errors.missingFields")
	case CategoryInvalidTime:
		return t.T("booking.errors.invalidTime")
	case CategoryServer:
		if msg != "" {
			return msg
		}
	case CategoryValidation:
		switch httperr.CodeOf(err) {
		case ErrBarberRequired, ErrUnknownBarber:
			return t.T("booking.barber.label")
		case ErrDateRequired, ErrDateUnavailable:
			return t.T("booking.selectDateLabel")
		case ErrSlotUnavailable:
			return t.T("booking.errors.loadSlots")
		}
	}
	return t.T("booking.errors.generic")
}
