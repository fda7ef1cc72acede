package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meister-web/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))
	return db
}

func TestDispatcherWritesEvents(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(New(db), nil)

	d.Dispatch(Event{
		Actor:     ActorVisitor,
		SessionID: "sess-1",
		Action:    ActionBookingSubmitted,
		Entity:    "appointment",
		EntityID:  IntID(77),
		Metadata:  map[string]any{"barber": 1, "start_at": "2025-06-10T09:30:00"},
	})
	d.Dispatch(Event{Actor: ActorAdmin, Action: ActionTimeOffDeleted, Entity: "timeoff", EntityID: IntID(4)})
	d.Close()

	var logs []models.AuditLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, ActionBookingSubmitted, logs[0].Action)
	assert.Equal(t, 77, *logs[0].EntityID)
	assert.JSONEq(t, `{"barber":1,"start_at":"2025-06-10T09:30:00"}`, logs[0].Metadata)
	assert.Empty(t, logs[1].Metadata)

	// dispatching after close is a no-op
	d.Dispatch(Event{Action: ActionContactSent})
}

func TestRecentFilters(t *testing.T) {
	db := newTestDB(t)
	l := New(db)
	ctx := context.Background()

	require.NoError(t, l.Log(ctx, Event{Actor: ActorVisitor, Action: ActionContactSent}))
	require.NoError(t, l.Log(ctx, Event{Actor: ActorAdmin, Action: ActionTimeOffCreated}))
	require.NoError(t, l.Log(ctx, Event{Actor: ActorAdmin, Action: ActionTimeOffDeleted}))

	all, err := l.Recent(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ActionTimeOffDeleted, all[0].Action)

	admin, err := l.Recent(ctx, Filter{Actor: ActorAdmin, Limit: 1})
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, ActionTimeOffDeleted, admin[0].Action)

	created, err := l.Recent(ctx, Filter{Action: ActionTimeOffCreated})
	require.NoError(t, err)
	require.Len(t, created, 1)
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: ActionContactSent})
	d.Close()
	logs, err := d.Recent(context.Background(), Filter{})
	assert.NoError(t, err)
	assert.Nil(t, logs)
}
