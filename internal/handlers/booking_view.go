package handlers

import (
	"github.com/BruksfildServices01/meister-web/internal/domain/availability"
	"github.com/BruksfildServices01/meister-web/internal/domain/booking"
	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
	"github.com/BruksfildServices01/meister-web/internal/dto"
	"github.com/BruksfildServices01/meister-web/internal/i18n"
)

type barberOption struct {
	ID       int
	Name     string
	Selected bool
}

type serviceOption struct {
	Type     string
	Title    string
	Duration string
	Selected bool
}

type slotOption struct {
	Value    string
	Selected bool
}

type bookingView struct {
	Step      int
	StepLabel string

	Barbers      []barberOption
	BarbersError string
	BarberName   string
	CanNext      bool

	Calendar  dto.CalendarDTO
	DateHint  string
	DateInfo  string
	Date      string
	DateLabel string
	Autofocus bool

	Services     []serviceOption
	ServiceTitle string
	Slots        []slotOption
	Slot         string
	SlotsLoading bool
	SlotsHint    string
	SlotsError   string

	Customer  booking.Customer
	CanSubmit bool

	Error   string
	Refresh bool
}

func buildBookingView(w *booking.Wizard, t *i18n.Translator) bookingView {
	snap := w.Snapshot(t)
	cal := buildCalendar(w.Grid(t), snap, t)

	v := bookingView{
		Step:      int(snap.Step),
		StepLabel: t.T("booking.step", "current", int(snap.Step), "total", booking.TotalSteps),
		Calendar:  cal,
		Date:      snap.Selection.Date.String(),
		Slot:      snap.Selection.Slot,
		Customer:  snap.Selection.Customer,
		Refresh:   cal.Pending || snap.SlotsState == booking.SlotsLoading,
	}

	if snap.BarbersErr != nil {
		v.BarbersError = t.T("booking.errors.loadBarbers")
	}
	for _, b := range snap.Barbers {
		v.Barbers = append(v.Barbers, barberOption{
			ID:       b.ID,
			Name:     b.Name,
			Selected: b.ID == snap.Selection.BarberID,
		})
	}
	if snap.Barber != nil {
		v.BarberName = snap.Barber.Name
	}

	dateOK := !snap.Selection.Date.IsZero() && !snap.DateState.Disabled
	switch snap.Step {
	case booking.StepBarber:
		v.CanNext = snap.Selection.BarberID != 0
	case booking.StepDate:
		v.CanNext = dateOK
	}

	if dateOK {
		v.DateHint = t.T("booking.weekdayLabel", "weekday", t.WeekdayName(snap.Selection.Date))
		v.DateInfo = snap.DateState.Info
		v.DateLabel = t.LongDate(snap.Selection.Date)
	} else {
		v.DateHint = t.T("booking.calendar.hint")
	}

	for _, s := range booking.Services {
		v.Services = append(v.Services, serviceOption{
			Type:     s.Type,
			Title:    t.T(s.TitleKey()),
			Duration: t.T(s.DurationKey()),
			Selected: s.Type == snap.Service.Type,
		})
	}
	v.ServiceTitle = t.T(snap.Service.TitleKey())

	switch {
	case snap.SlotsState == booking.SlotsLoading:
		v.SlotsLoading = true
		v.SlotsHint = t.T("booking.calendar.loadingInline")
	case snap.Selection.Date.IsZero():
		v.SlotsHint = t.T("booking.calendar.hint")
	case snap.SlotsState == booking.SlotsFailed:
		v.SlotsError = t.T("booking.errors.loadSlots")
	case len(snap.Slots) == 0:
		v.SlotsHint = t.T("timeslot.empty")
	}
	for _, s := range snap.Slots {
		v.Slots = append(v.Slots, slotOption{Value: s, Selected: s == snap.Selection.Slot})
	}

	c := snap.Selection.Customer.Trimmed()
	v.CanSubmit = c.Name != "" && c.Email != "" && c.Phone != "" && v.Slot != "" && !v.SlotsLoading

	if snap.Err != nil {
		v.Error = booking.Message(snap.Err, t)
	}
	return v
}

func buildCalendar(grid *calendar.Grid, snap booking.Snapshot, t *i18n.Translator) dto.CalendarDTO {
	first := snap.MinDate.StartOfMonth()
	out := dto.CalendarDTO{
		Month:        grid.Month.String(),
		Title:        t.MonthTitle(grid.Month),
		Status:       snap.MonthStatus.String(),
		Pending:      snap.MonthStatus == availability.StatusPending,
		PrevMonth:    grid.Month.AddMonths(-1).String(),
		NextMonth:    grid.Month.AddMonths(1).String(),
		PrevDisabled: !grid.Month.After(first),
		Focus:        grid.Focus.String(),
		Selected:     grid.Selected.String(),
		Weekdays:     t.Weekdays(),
	}

	for _, week := range grid.Weeks() {
		row := make([]dto.CalendarCellDTO, 0, len(week))
		for _, cell := range week {
			row = append(row, dto.CalendarCellDTO{
				Date:     cell.Date.String(),
				Day:      cell.Date.Day(),
				Outside:  cell.Outside,
				Disabled: !cell.Selectable(),
				Selected: cell.Selected,
				TabStop:  cell.TabStop,
				Code:     cell.State.Code,
				Note:     cell.State.Note(),
				Label:    cell.AriaLabel(t.LongDate),
			})
		}
		out.Weeks = append(out.Weeks, row)
	}
	return out
}
