package booking

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meister-web/internal/audit"
	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/db"
	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
	domain "github.com/BruksfildServices01/meister-web/internal/domain/booking"
	"github.com/BruksfildServices01/meister-web/internal/models"
	"github.com/BruksfildServices01/meister-web/internal/timezone"
)

type gateway struct {
	createErr error
}

func (gateway) ListBarbers(context.Context) ([]backend.Barber, error) {
	return []backend.Barber{{ID: 1, Name: "Ali", IsActive: true}}, nil
}

func (gateway) MonthAvailability(_ context.Context, _ int, start, _ calendar.Date, _ string, _ int) (*backend.Availability, error) {
	return &backend.Availability{Start: start.String(), Days: []backend.AvailabilityDay{{Date: "2025-06-10", Free: 2}}}, nil
}

func (gateway) Slots(context.Context, int, calendar.Date, string, int) ([]string, error) {
	return []string{"09:30"}, nil
}

func (g gateway) CreateAppointment(_ context.Context, p backend.AppointmentRequest) (*backend.Appointment, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &backend.Appointment{ID: 77, Barber: p.Barber, StartAt: p.StartAt}, nil
}

func newAuditDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), true)
	require.NoError(t, err)
	return conn
}

func readyWizard(t *testing.T, gw gateway) *domain.Wizard {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	w := domain.NewWizard(gw, domain.WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 10, 0, 0, 0, timezone.Shop())
	}))
	require.NoError(t, w.LoadBarbers(ctx))
	require.NoError(t, w.Preselect(ctx, 1))
	w.ChangeMonth(ctx, calendar.MustParse("2025-06-01"))
	w.AwaitMonth(ctx)
	require.NoError(t, w.SelectDate(ctx, calendar.MustParse("2025-06-10")))
	w.AwaitSlots(ctx)
	require.NoError(t, w.SelectSlot("09:30"))
	w.SetCustomer(domain.Customer{Name: "Jo", Email: "jo@example.com", Phone: "0176 1234567"})
	return w
}

func TestSubmitBookingAudited(t *testing.T) {
	conn := newAuditDB(t)
	d := audit.NewDispatcher(audit.New(conn), nil)
	uc := NewSubmitBooking(d)

	ap, err := uc.Execute(context.Background(), "sess-1", readyWizard(t, gateway{}))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10T09:30:00", ap.StartAt)
	d.Close()

	var logs []models.AuditLog
	require.NoError(t, conn.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, audit.ActionBookingSubmitted, logs[0].Action)
	assert.Equal(t, "sess-1", logs[0].SessionID)
	assert.Equal(t, 77, *logs[0].EntityID)
}

func TestSubmitBookingRejectionAudited(t *testing.T) {
	conn := newAuditDB(t)
	d := audit.NewDispatcher(audit.New(conn), nil)
	uc := NewSubmitBooking(d)

	rejected := &backend.APIError{Status: http.StatusUnprocessableEntity, Message: "Invalid duration"}
	_, err := uc.Execute(context.Background(), "sess-1", readyWizard(t, gateway{createErr: rejected}))
	require.Error(t, err)
	d.Close()

	var logs []models.AuditLog
	require.NoError(t, conn.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, audit.ActionBookingRejected, logs[0].Action)
	assert.JSONEq(t, `{"message":"Invalid duration"}`, logs[0].Metadata)
}

func TestSubmitBookingMissingFieldsNotAudited(t *testing.T) {
	conn := newAuditDB(t)
	d := audit.NewDispatcher(audit.New(conn), nil)
	uc := NewSubmitBooking(d)

	w := domain.NewWizard(gateway{})
	_, err := uc.Execute(context.Background(), "sess-1", w)
	category, _ := domain.Classify(err)
	assert.Equal(t, domain.CategoryMissingFields, category)
	d.Close()

	var count int64
	require.NoError(t, conn.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}
