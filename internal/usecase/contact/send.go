package contact

import (
	"context"

	"github.com/BruksfildServices01/meister-web/internal/audit"
	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/validators"
)

const ErrInvalid = "contact_invalid"

type Sender interface {
	SendContact(ctx context.Context, payload backend.ContactRequest) error
}

type SendContact struct {
	sender Sender
	audit  *audit.Dispatcher
}

func NewSendContact(sender Sender, audit *audit.Dispatcher) *SendContact {
	return &SendContact{
		sender: sender,
		audit:  audit,
	}
}

// Execute validates locally first; an invalid form never reaches the
// backend.
func (uc *SendContact) Execute(
	ctx context.Context,
	sessionID string,
	in validators.ContactInput,
) error {

	in = in.Normalize()
	if !validators.ValidateContact(in) {
		return httperr.ErrBusiness(ErrInvalid)
	}

	err := uc.sender.SendContact(ctx, backend.ContactRequest{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Message: in.Message,
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:     audit.ActorVisitor,
		SessionID: sessionID,
		Action:    audit.ActionContactSent,
		Entity:    "contact",
		Metadata: map[string]any{
			"has_email": in.Email != "",
			"has_phone": in.Phone != "",
		},
	})
	return nil
}
