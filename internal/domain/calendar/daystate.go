package calendar

// Reason codes attached to a DayState. They are stable identifiers; the
// human text lives in Reason/Info and is already localized.
const (
	CodePast              = "past"
	CodeClosed            = "closed"
	CodeBarberUnavailable = "barber_unavailable"
	CodeUnknown           = "unknown"
	CodeLoading           = "loading"
	CodeFullyBooked       = "fully_booked"
	CodeAvailable         = "available"
	CodeOutside           = "outside"
)

// DayState is derived on every render and never stored.
type DayState struct {
	Disabled bool
	Code     string
	Reason   string
	Info     string
	Free     int
	Pending  bool
}

// Note is the text shown next to a day: the reason when there is one,
// otherwise the info line.
func (s DayState) Note() string {
	if s.Reason != "" {
		return s.Reason
	}
	return s.Info
}

// StateFunc decides the state of an in-month day.
type StateFunc func(Date) DayState
