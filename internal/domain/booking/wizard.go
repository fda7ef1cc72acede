package booking

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/domain/availability"
	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/timezone"
)

type Step int

const (
	StepBarber Step = iota + 1
	StepDate
	StepDetails
	StepConfirmed
)

// TotalSteps excludes the confirmation view.
const TotalSteps = 3

type SlotsState int

const (
	SlotsIdle SlotsState = iota
	SlotsLoading
	SlotsLoaded
	SlotsFailed
)

// Gateway is the part of the backend the wizard calls.
type Gateway interface {
	ListBarbers(ctx context.Context) ([]backend.Barber, error)
	MonthAvailability(ctx context.Context, barberID int, start, end calendar.Date, serviceType string, duration int) (*backend.Availability, error)
	Slots(ctx context.Context, barberID int, date calendar.Date, serviceType string, duration int) ([]string, error)
	CreateAppointment(ctx context.Context, payload backend.AppointmentRequest) (*backend.Appointment, error)
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

func (c Customer) Trimmed() Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

type Selection struct {
	BarberID    int
	ServiceType string
	Date        calendar.Date
	Slot        string
	Customer    Customer
}

// Snapshot is a consistent copy of the wizard for rendering.
type Snapshot struct {
	Step        Step
	Barbers     []backend.Barber
	BarbersErr  error
	Barber      *backend.Barber
	Selection   Selection
	Service     Service
	Month       calendar.Date
	MinDate     calendar.Date
	Focus       calendar.Date
	MonthStatus availability.Status
	DateState   calendar.DayState
	Slots       []string
	SlotsState  SlotsState
	Err         error
	Appointment *backend.Appointment
}

type Option func(*Wizard)

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(w *Wizard) { w.loc = loc }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

func WithObserver(o availability.Observer) Option {
	return func(w *Wizard) { w.observe = o }
}

// Wizard drives barber -> date -> details for one visitor. All methods are
// safe for concurrent use; network results land asynchronously and are
// only committed while still current.
type Wizard struct {
	mu sync.Mutex

	gateway Gateway
	cache   *availability.Cache
	observe availability.Observer
	now     func() time.Time
	loc     *time.Location
	logger  *zap.Logger

	step       Step
	barbers    []backend.Barber
	barbersErr error
	sel        Selection
	month      calendar.Date
	focus      calendar.Date

	slots      []string
	slotsState SlotsState
	slotGen    uint64
	slotDone   chan struct{}

	err         error
	appointment *backend.Appointment
}

func NewWizard(gateway Gateway, opts ...Option) *Wizard {
	w := &Wizard{
		gateway: gateway,
		now:     time.Now,
		loc:     timezone.Shop(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.cache = availability.NewCache(w.observe)
	w.resetLocked()
	return w
}

func (w *Wizard) resetLocked() {
	w.step = StepBarber
	w.sel = Selection{ServiceType: DefaultService}
	w.month = w.minDate().StartOfMonth()
	w.focus = ""
	w.clearSlotsLocked()
	w.err = nil
	w.appointment = nil
	w.cache.Reset()
}

// Restart begins a fresh booking, keeping the loaded barber list.
func (w *Wizard) Restart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Wizard) minDate() calendar.Date {
	return calendar.MinBookable(w.now(), w.loc)
}

func (w *Wizard) service() Service {
	if s, ok := ServiceByType(w.sel.ServiceType); ok {
		return s
	}
	s, _ := ServiceByType(DefaultService)
	return s
}

func (w *Wizard) keyFor(month calendar.Date) availability.Key {
	s := w.service()
	return availability.KeyFor(month, s.Type, s.Duration)
}

func (w *Wizard) barberLocked() *backend.Barber {
	for i := range w.barbers {
		if w.barbers[i].ID == w.sel.BarberID {
			b := w.barbers[i]
			return &b
		}
	}
	return nil
}

// ======================================================
// BARBERS
// ======================================================

// LoadBarbers fetches the active barbers once. A failure is kept so the page
// can show it, and the next call retries.
func (w *Wizard) LoadBarbers(ctx context.Context) error {
	w.mu.Lock()
	if w.barbers != nil {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	list, err := w.gateway.ListBarbers(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.barbersErr = err
		w.logger.Warn("load barbers failed", zap.Error(err))
		return err
	}
	active := make([]backend.Barber, 0, len(list))
	for _, b := range list {
		if !b.IsActive {
			continue
		}
		b.Name = strings.TrimSpace(b.Name)
		active = append(active, b)
	}
	w.barbers = active
	w.barbersErr = nil
	return nil
}

func (w *Wizard) SelectBarber(ctx context.Context, id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectBarberLocked(ctx, id)
}

func (w *Wizard) selectBarberLocked(ctx context.Context, id int) error {
	if w.barbers != nil && !slices.ContainsFunc(w.barbers, func(b backend.Barber) bool { return b.ID == id }) {
		return httperr.ErrBusiness(ErrUnknownBarber)
	}
	w.err = nil
	if w.sel.BarberID == id {
		w.ensureMonthLocked(ctx)
		return nil
	}

	w.sel.BarberID = id
	w.sel.Date = ""
	w.sel.Slot = ""
	w.focus = ""
	w.month = w.minDate().StartOfMonth()
	w.clearSlotsLocked()
	w.cache.Reset()
	w.ensureMonthLocked(ctx)
	return nil
}

// Preselect picks a barber from a deep link and jumps to the date step.
func (w *Wizard) Preselect(ctx context.Context, id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.selectBarberLocked(ctx, id); err != nil {
		return err
	}
	w.step = StepDate
	return nil
}

// ======================================================
// SERVICE / MONTH / DATE / SLOT
// ======================================================

func (w *Wizard) SelectService(ctx context.Context, serviceType string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := ServiceByType(serviceType); !ok {
		return httperr.ErrBusiness(ErrUnknownService)
	}
	w.err = nil
	if w.sel.ServiceType == serviceType {
		return nil
	}

	w.sel.ServiceType = serviceType
	w.sel.Slot = ""
	w.clearSlotsLocked()
	w.cache.Reset()
	w.ensureMonthLocked(ctx)
	w.reconcileLocked()
	if !w.sel.Date.IsZero() {
		w.fetchSlotsLocked(ctx)
	}
	return nil
}

// ChangeMonth shows the month containing month. Months before the first
// bookable one are clamped.
func (w *Wizard) ChangeMonth(ctx context.Context, month calendar.Date) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.changeMonthLocked(ctx, month)
}

func (w *Wizard) changeMonthLocked(ctx context.Context, month calendar.Date) {
	first := w.minDate().StartOfMonth()
	month = month.StartOfMonth()
	if month.Before(first) {
		month = first
	}
	w.month = month
	w.ensureMonthLocked(ctx)
}

func (w *Wizard) SelectDate(ctx context.Context, d calendar.Date) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectDateLocked(ctx, d)
}

func (w *Wizard) selectDateLocked(ctx context.Context, d calendar.Date) error {
	if w.sel.BarberID == 0 {
		return httperr.ErrBusiness(ErrBarberRequired)
	}
	if _, err := calendar.Parse(d.String()); err != nil {
		return httperr.ErrBusiness(ErrDateRequired)
	}
	if w.dayStateLocked(d, nil).Disabled {
		return httperr.ErrBusiness(ErrDateUnavailable)
	}

	w.err = nil
	w.focus = d
	if !d.SameMonth(w.month) {
		w.changeMonthLocked(ctx, d)
	}
	if w.sel.Date == d && (w.slotsState == SlotsLoading || w.slotsState == SlotsLoaded) {
		return nil
	}
	w.sel.Date = d
	w.sel.Slot = ""
	w.fetchSlotsLocked(ctx)
	return nil
}

func (w *Wizard) SelectSlot(slot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.slotsState != SlotsLoaded || !slices.Contains(w.slots, slot) {
		return httperr.ErrBusiness(ErrSlotUnavailable)
	}
	w.sel.Slot = slot
	w.err = nil
	return nil
}

// SetCustomer stores the contact fields as typed; trimming happens on submit.
func (w *Wizard) SetCustomer(c Customer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.Customer = c
}

// Focus records the roving focus of the calendar.
func (w *Wizard) Focus(d calendar.Date) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focus = d
}

// ======================================================
// STEPS
// ======================================================

func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepBarber:
		if w.sel.BarberID == 0 {
			w.err = httperr.ErrBusiness(ErrBarberRequired)
			return w.err
		}
		w.step = StepDate
	case StepDate:
		w.reconcileLocked()
		if w.sel.Date.IsZero() {
			w.err = httperr.ErrBusiness(ErrDateRequired)
			return w.err
		}
		w.step = StepDetails
	}
	w.err = nil
	return nil
}

func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepBarber && w.step <= StepDetails {
		w.step--
	}
	w.err = nil
}

// Submit validates the selection without touching the network when a
// field is missing, then creates the appointment. On failure the entered
// data is kept.
func (w *Wizard) Submit(ctx context.Context) (*backend.Appointment, error) {
	w.mu.Lock()
	payload, err := w.payloadLocked()
	if err != nil {
		w.err = err
		w.mu.Unlock()
		return nil, err
	}
	w.mu.Unlock()

	ap, err := w.gateway.CreateAppointment(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.err = err
		w.logger.Info("appointment rejected",
			zap.Int("barber", payload.Barber),
			zap.String("start_at", payload.StartAt),
			zap.Error(err),
		)
		return nil, err
	}
	w.err = nil
	w.appointment = ap
	w.step = StepConfirmed
	return ap, nil
}

func (w *Wizard) payloadLocked() (backend.AppointmentRequest, error) {
	c := w.sel.Customer.Trimmed()
	if c.Name == "" || c.Email == "" || c.Phone == "" || w.sel.Slot == "" || w.sel.Date.IsZero() {
		return backend.AppointmentRequest{}, httperr.ErrBusiness(ErrMissingFields)
	}
	startAt, err := StartStamp(w.sel.Date, w.sel.Slot)
	if err != nil {
		return backend.AppointmentRequest{}, err
	}
	s := w.service()
	return backend.AppointmentRequest{
		Barber:          w.sel.BarberID,
		StartAt:         startAt,
		ServiceType:     s.Type,
		DurationMinutes: s.Duration,
		Customer:        backend.Customer(c),
	}, nil
}

// StartStamp joins a date and an HH:MM slot into the local timestamp the
// backend expects, e.g. 2025-06-10T09:30:00.
func StartStamp(d calendar.Date, slot string) (string, error) {
	stamp := d.String() + "T" + slot + ":00"
	if _, err := time.Parse("2006-01-02T15:04:05", stamp); err != nil {
		return "", httperr.ErrBusiness(ErrInvalidTime)
	}
	return stamp, nil
}

// ======================================================
// ASYNC
// ======================================================

func (w *Wizard) ensureMonthLocked(ctx context.Context) {
	if w.sel.BarberID == 0 {
		return
	}
	barberID := w.sel.BarberID
	w.cache.EnsureMonthLoaded(ctx, w.keyFor(w.month), func(ctx context.Context, key availability.Key) (map[calendar.Date]int, error) {
		serviceType := key.ServiceType
		if serviceType == availability.CustomService {
			serviceType = ""
		}
		resp, err := w.gateway.MonthAvailability(ctx, barberID, key.Month, key.Month.EndOfMonth(), serviceType, key.Duration)
		if err != nil {
			w.logger.Warn("month availability failed",
				zap.Int("barber", barberID),
				zap.String("key", key.String()),
				zap.Error(err),
			)
			return nil, err
		}
		free := make(map[calendar.Date]int, len(resp.Days))
		for _, day := range resp.Days {
			d, err := calendar.Parse(day.Date)
			if err != nil {
				continue
			}
			free[d] = day.Free
		}
		return free, nil
	})
}

func (w *Wizard) clearSlotsLocked() {
	w.slotGen++
	w.slots = nil
	w.slotsState = SlotsIdle
}

func (w *Wizard) fetchSlotsLocked(ctx context.Context) {
	w.slotGen++
	gen := w.slotGen
	done := make(chan struct{})
	w.slotDone = done
	w.slots = nil
	w.slotsState = SlotsLoading

	barberID, date, s := w.sel.BarberID, w.sel.Date, w.service()
	go func(ctx context.Context) {
		defer close(done)
		slots, err := w.gateway.Slots(ctx, barberID, date, s.Type, s.Duration)

		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.slotGen {
			return
		}
		if err != nil {
			w.logger.Warn("slots failed", zap.Int("barber", barberID), zap.String("date", date.String()), zap.Error(err))
			w.slotsState = SlotsFailed
			return
		}
		w.slots = slots
		w.slotsState = SlotsLoaded
	}(context.WithoutCancel(ctx))
}

// AwaitMonth waits until the displayed month has left pending, or ctx ends.
func (w *Wizard) AwaitMonth(ctx context.Context) availability.Status {
	w.mu.Lock()
	key := w.keyFor(w.month)
	w.mu.Unlock()
	return w.cache.Await(ctx, key).Status
}

// AwaitSlots waits for the newest slot fetch, or ctx ends.
func (w *Wizard) AwaitSlots(ctx context.Context) {
	w.mu.Lock()
	done := w.slotDone
	loading := w.slotsState == SlotsLoading
	w.mu.Unlock()
	if !loading || done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// ======================================================
// VIEW
// ======================================================

func (w *Wizard) dayStateLocked(d calendar.Date, t availability.Translator) calendar.DayState {
	var weekdays availability.WeekdaySet
	if b := w.barberLocked(); b != nil {
		weekdays = availability.WeekdaysFromMondayIndex(b.WorkingDays)
	}
	return availability.DayState(d, availability.PolicyContext{
		MinDate:        w.minDate(),
		ClosedWeekday:  availability.ClosedWeekday,
		BarberWeekdays: weekdays,
		Entry:          w.cache.Get(w.keyFor(d.StartOfMonth())),
		Translator:     t,
	})
}

// reconcileLocked drops a selected date that is no longer selectable.
func (w *Wizard) reconcileLocked() {
	if w.sel.Date.IsZero() {
		return
	}
	if !w.dayStateLocked(w.sel.Date, nil).Disabled {
		return
	}
	w.sel.Date = ""
	w.sel.Slot = ""
	w.clearSlotsLocked()
	if w.step == StepDetails {
		w.step = StepDate
	}
}

// DayState evaluates d against the current selection.
func (w *Wizard) DayState(d calendar.Date, t availability.Translator) calendar.DayState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dayStateLocked(d, t)
}

// Grid renders the displayed month.
func (w *Wizard) Grid(t availability.Translator) *calendar.Grid {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gridLocked(t)
}

func (w *Wizard) gridLocked(t availability.Translator) *calendar.Grid {
	w.reconcileLocked()
	return calendar.BuildGrid(calendar.GridParams{
		Month:    w.month,
		MinDate:  w.minDate(),
		Selected: w.sel.Date,
		Focused:  w.focus,
		State: func(d calendar.Date) calendar.DayState {
			return w.dayStateLocked(d, t)
		},
	})
}

// HandleKey runs a calendar key press and applies its effect.
func (w *Wizard) HandleKey(ctx context.Context, from calendar.Date, key calendar.Key) (calendar.Action, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	action := w.gridLocked(nil).HandleKey(from, key)
	switch action.Kind {
	case calendar.ActionFocus:
		w.focus = action.Date
	case calendar.ActionSelect:
		if err := w.selectDateLocked(ctx, action.Date); err != nil {
			return calendar.Action{Kind: calendar.ActionNone}, err
		}
	case calendar.ActionChangeMonth:
		w.changeMonthLocked(ctx, action.Month)
		action.Month = w.month
	}
	return action, nil
}

func (w *Wizard) Snapshot(t availability.Translator) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reconcileLocked()
	snap := Snapshot{
		Step:        w.step,
		Barbers:     slices.Clone(w.barbers),
		BarbersErr:  w.barbersErr,
		Barber:      w.barberLocked(),
		Selection:   w.sel,
		Service:     w.service(),
		Month:       w.month,
		MinDate:     w.minDate(),
		Focus:       w.focus,
		MonthStatus: w.cache.Get(w.keyFor(w.month)).Status,
		Slots:       slices.Clone(w.slots),
		SlotsState:  w.slotsState,
		Err:         w.err,
		Appointment: w.appointment,
	}
	if !w.sel.Date.IsZero() {
		snap.DateState = w.dayStateLocked(w.sel.Date, t)
	}
	return snap
}

// Err returns the last recorded error.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
