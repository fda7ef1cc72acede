package booking

import (
	"context"

	"github.com/BruksfildServices01/meister-web/internal/audit"
	"github.com/BruksfildServices01/meister-web/internal/backend"
	domain "github.com/BruksfildServices01/meister-web/internal/domain/booking"
)

type SubmitBooking struct {
	audit *audit.Dispatcher
}

func NewSubmitBooking(audit *audit.Dispatcher) *SubmitBooking {
	return &SubmitBooking{audit: audit}
}

// Execute submits the wizard of one session. Local validation failures
// are not recorded; backend answers are.
func (uc *SubmitBooking) Execute(
	ctx context.Context,
	sessionID string,
	wizard *domain.Wizard,
) (*backend.Appointment, error) {

	ap, err := wizard.Submit(ctx)
	if err != nil {
		category, msg := domain.Classify(err)
		if category == domain.CategoryServer {
			uc.audit.Dispatch(audit.Event{
				Actor:     audit.ActorVisitor,
				SessionID: sessionID,
				Action:    audit.ActionBookingRejected,
				Entity:    "appointment",
				Metadata:  map[string]any{"message": msg},
			})
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:     audit.ActorVisitor,
		SessionID: sessionID,
		Action:    audit.ActionBookingSubmitted,
		Entity:    "appointment",
		EntityID:  audit.IntID(ap.ID),
		Metadata: map[string]any{
			"barber":   ap.Barber,
			"start_at": ap.StartAt,
		},
	})

	return ap, nil
}
