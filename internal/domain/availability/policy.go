package availability

import (
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
)

// ClosedWeekday is the shop's weekly day off.
const ClosedWeekday = time.Sunday

// Message keys looked up through the Translator.
const (
	MsgPast              = "booking.calendar.past"
	MsgClosed            = "booking.calendar.closed"
	MsgBarberUnavailable = "booking.calendar.barberUnavailable"
	MsgUnknown           = "booking.calendar.error"
	MsgLoading           = "booking.calendar.loading"
	MsgFullyBooked       = "booking.calendar.fullyBooked"
	MsgAvailable         = "booking.calendar.available"
)

var fallbackText = map[string]string{
	MsgPast:              "past",
	MsgClosed:            "closed",
	MsgBarberUnavailable: "barber unavailable",
	MsgUnknown:           "unknown availability",
	MsgLoading:           "loading",
	MsgFullyBooked:       "fully booked",
	MsgAvailable:         "{{count}} slots available",
}

// Translator resolves message keys. vars are key/value pairs interpolated
// into the message ("count", 3).
type Translator interface {
	T(key string, vars ...any) string
}

// WeekdaySet is a set of working weekdays.
type WeekdaySet map[time.Weekday]bool

// DefaultWeekdays is Monday to Saturday.
func DefaultWeekdays() WeekdaySet {
	return WeekdaySet{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true, time.Saturday: true,
	}
}

// WeekdaysFromMondayIndex converts 0=Mon..6=Sun numbers. An empty input
// yields the default set.
func WeekdaysFromMondayIndex(days []int) WeekdaySet {
	if len(days) == 0 {
		return DefaultWeekdays()
	}
	set := WeekdaySet{}
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		set[time.Weekday((d+1)%7)] = true
	}
	if len(set) == 0 {
		return DefaultWeekdays()
	}
	return set
}

type PolicyContext struct {
	MinDate        calendar.Date
	ClosedWeekday  time.Weekday
	BarberWeekdays WeekdaySet
	// Entry is the cache entry of the month the date belongs to.
	Entry      Entry
	Translator Translator
}

// DayState applies the rules in order; the first match wins. Hard
// constraints come before data dependent ones, and the free count is only
// reported once a day is known to be bookable.
func DayState(d calendar.Date, ctx PolicyContext) calendar.DayState {
	t := func(key string, vars ...any) string {
		if ctx.Translator != nil {
			return ctx.Translator.T(key, vars...)
		}
		msg := fallbackText[key]
		if len(vars) == 2 {
			if n, ok := vars[1].(int); ok {
				msg = strings.ReplaceAll(msg, "{{count}}", strconv.Itoa(n))
			}
		}
		return msg
	}

	if d.Before(ctx.MinDate) {
		return calendar.DayState{Disabled: true, Code: calendar.CodePast, Reason: t(MsgPast)}
	}
	weekday := d.Weekday()
	if weekday == ctx.ClosedWeekday {
		return calendar.DayState{Disabled: true, Code: calendar.CodeClosed, Reason: t(MsgClosed)}
	}
	allowed := ctx.BarberWeekdays
	if allowed == nil {
		allowed = DefaultWeekdays()
	}
	if !allowed[weekday] {
		return calendar.DayState{Disabled: true, Code: calendar.CodeBarberUnavailable, Reason: t(MsgBarberUnavailable)}
	}

	switch ctx.Entry.Status {
	case StatusFailed:
		return calendar.DayState{Code: calendar.CodeUnknown, Info: t(MsgUnknown)}
	case StatusUnknown, StatusPending:
		return calendar.DayState{Code: calendar.CodeLoading, Pending: true, Info: t(MsgLoading)}
	}

	free := ctx.Entry.FreeOn(d)
	if free <= 0 {
		return calendar.DayState{Disabled: true, Code: calendar.CodeFullyBooked, Reason: t(MsgFullyBooked)}
	}
	return calendar.DayState{
		Code: calendar.CodeAvailable,
		Free: free,
		Info: t(MsgAvailable, "count", free),
	}
}
