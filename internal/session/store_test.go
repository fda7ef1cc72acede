package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/domain/booking"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T, c *clock, gauge *int) *Store {
	t.Helper()
	return NewStore(time.Hour, func() *booking.Wizard { return booking.NewWizard(nil) },
		WithClock(c.Now),
		WithGauge(func(n int) { *gauge = n }),
	)
}

func TestCreateAndGet(t *testing.T) {
	c := &clock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	var active int
	s := newStore(t, c, &active)

	sess := s.Create()
	require.NotEmpty(t, sess.ID)
	require.NotNil(t, sess.Wizard)
	assert.Equal(t, 1, active)

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestGetOrCreate(t *testing.T) {
	c := &clock{now: time.Now()}
	var active int
	s := newStore(t, c, &active)

	first, created := s.GetOrCreate("")
	assert.True(t, created)

	again, created := s.GetOrCreate(first.ID)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created := s.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestIdleSessionsExpire(t *testing.T) {
	c := &clock{now: time.Now()}
	var active int
	s := newStore(t, c, &active)

	old := s.Create()
	c.Advance(50 * time.Minute)
	fresh := s.Create()

	c.Advance(20 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, active)

	_, ok := s.Get(old.ID)
	assert.False(t, ok)
	_, ok = s.Get(fresh.ID)
	assert.True(t, ok)

	c.Advance(61 * time.Minute)
	_, ok = s.Get(fresh.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, active)
}

func TestAdminStateAndFlash(t *testing.T) {
	c := &clock{now: time.Now()}
	var active int
	sess := newStore(t, c, &active).Create()

	assert.False(t, sess.Authorized())
	sess.SetAdminPassword("pw")
	assert.True(t, sess.Authorized())

	sess.SetPendingForce(&PendingForce{BarberID: 2, Request: backend.TimeOffRequest{StartDate: "2025-06-10", EndDate: "2025-06-10"}})
	require.NotNil(t, sess.Admin().Pending)
	assert.Equal(t, 2, sess.Admin().Pending.BarberID)

	sess.Logout()
	assert.False(t, sess.Authorized())
	assert.Nil(t, sess.Admin().Pending)

	sess.Flash("saved")
	assert.Equal(t, "saved", sess.TakeFlash())
	assert.Empty(t, sess.TakeFlash())
}
