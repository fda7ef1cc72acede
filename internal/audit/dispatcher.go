package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/models"
)

const (
	ActorVisitor = "visitor"
	ActorAdmin   = "admin"
)

// Actions recorded by the front.
const (
	ActionBookingSubmitted = "booking_submitted"
	ActionBookingRejected  = "booking_rejected"
	ActionContactSent      = "contact_sent"
	ActionAdminLogin       = "admin_login"
	ActionTimeOffCreated   = "timeoff_created"
	ActionTimeOffForced    = "timeoff_forced"
	ActionTimeOffConflict  = "timeoff_conflict"
	ActionTimeOffDeleted   = "timeoff_deleted"
	ActionReviewsRefreshed = "reviews_refreshed"
)

type Event struct {
	Actor     string
	SessionID string
	Action    string
	Entity    string
	EntityID  *int
	Metadata  any
}

// Dispatcher writes events in the background. A nil Dispatcher drops
// everything, which is how the front runs without an audit database.
type Dispatcher struct {
	logger *Logger
	log    *zap.Logger
	queue  chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger *Logger, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		if err := d.logger.Log(context.Background(), ev); err != nil {
			d.log.Warn("audit write failed", zap.String("action", ev.Action), zap.Error(err))
		}
	}
}

// Dispatch never blocks; a full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Recent proxies to the underlying logger; nil when auditing is off.
func (d *Dispatcher) Recent(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	if d == nil {
		return nil, nil
	}
	return d.logger.Recent(ctx, f)
}

// IntID is a helper for Event.EntityID.
func IntID(id int) *int {
	return &id
}
