package timeoff

import (
	"context"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/meister-web/internal/audit"
	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/validators"
)

// Business error codes.
const (
	ErrInvalidPassword = "invalid_password"
	ErrNoBarbers       = "no_barbers"
	ErrInvalidRange    = "invalid_range"
)

// Gateway is the admin surface of the backend.
type Gateway interface {
	ListBarbers(ctx context.Context) ([]backend.Barber, error)
	ListTimeOff(ctx context.Context, password string, barberID int) ([]backend.TimeOff, error)
	CreateTimeOff(ctx context.Context, password string, barberID int, payload backend.TimeOffRequest) (*backend.TimeOff, error)
	DeleteTimeOff(ctx context.Context, password string, id int) error
	TimeOffConflicts(ctx context.Context, password string, barberID int, start, end calendar.Date) (*backend.TimeOffConflicts, error)
}

// IsUnauthorized reports a backend refusal of the admin credential.
func IsUnauthorized(err error) bool {
	if apiErr, ok := backend.IsAPIError(err); ok {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// ======================================================
// VERIFY
// ======================================================

type VerifyAdmin struct {
	gw    Gateway
	hash  []byte
	audit *audit.Dispatcher
}

// NewVerifyAdmin takes an optional bcrypt hash; when set, a candidate that
// does not match is refused without asking the backend.
func NewVerifyAdmin(gw Gateway, hash string, audit *audit.Dispatcher) *VerifyAdmin {
	uc := &VerifyAdmin{gw: gw, audit: audit}
	if hash != "" {
		uc.hash = []byte(hash)
	}
	return uc
}

func (uc *VerifyAdmin) Execute(ctx context.Context, sessionID, password string) error {
	if password == "" {
		return httperr.ErrBusiness(ErrInvalidPassword)
	}
	if uc.hash != nil {
		if bcrypt.CompareHashAndPassword(uc.hash, []byte(password)) != nil {
			return httperr.ErrBusiness(ErrInvalidPassword)
		}
	}

	barbers, err := uc.gw.ListBarbers(ctx)
	if err != nil {
		return err
	}
	if len(barbers) == 0 {
		return httperr.ErrBusiness(ErrNoBarbers)
	}

	if _, err := uc.gw.ListTimeOff(ctx, password, barbers[0].ID); err != nil {
		if IsUnauthorized(err) {
			return httperr.ErrBusiness(ErrInvalidPassword)
		}
		return err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:     audit.ActorAdmin,
		SessionID: sessionID,
		Action:    audit.ActionAdminLogin,
		Entity:    "admin",
	})
	return nil
}

// ======================================================
// BLOCK
// ======================================================

type BlockTimeOffInput struct {
	BarberID  int
	StartDate string
	EndDate   string
	Reason    string
	Force     bool
}

func (in BlockTimeOffInput) Request() backend.TimeOffRequest {
	return backend.TimeOffRequest{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Reason:    in.Reason,
		Force:     in.Force,
	}
}

type BlockTimeOff struct {
	gw    Gateway
	audit *audit.Dispatcher
}

func NewBlockTimeOff(gw Gateway, audit *audit.Dispatcher) *BlockTimeOff {
	return &BlockTimeOff{
		gw:    gw,
		audit: audit,
	}
}

// Execute creates the time-off. A refusal because of conflicts comes back
// as *backend.ConflictError so the caller can offer the forced retry.
func (uc *BlockTimeOff) Execute(
	ctx context.Context,
	sessionID string,
	password string,
	in BlockTimeOffInput,
) (*backend.TimeOff, error) {

	if !validators.ValidateTimeOff(validators.TimeOffInput{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Reason:    in.Reason,
	}) {
		return nil, httperr.ErrBusiness(ErrInvalidRange)
	}

	off, err := uc.gw.CreateTimeOff(ctx, password, in.BarberID, in.Request())
	if err != nil {
		if conflict, ok := backend.IsConflict(err); ok {
			uc.audit.Dispatch(audit.Event{
				Actor:     audit.ActorAdmin,
				SessionID: sessionID,
				Action:    audit.ActionTimeOffConflict,
				Entity:    "barber",
				EntityID:  audit.IntID(in.BarberID),
				Metadata: map[string]any{
					"start_date":   in.StartDate,
					"end_date":     in.EndDate,
					"time_off":     len(conflict.Conflicts.TimeOff),
					"appointments": len(conflict.Conflicts.Appointments),
				},
			})
		}
		return nil, err
	}

	action := audit.ActionTimeOffCreated
	if in.Force {
		action = audit.ActionTimeOffForced
	}
	uc.audit.Dispatch(audit.Event{
		Actor:     audit.ActorAdmin,
		SessionID: sessionID,
		Action:    action,
		Entity:    "time_off",
		EntityID:  audit.IntID(off.ID),
		Metadata: map[string]any{
			"barber":     in.BarberID,
			"start_date": off.StartDate,
			"end_date":   off.EndDate,
		},
	})
	return off, nil
}

// ======================================================
// DELETE
// ======================================================

type DeleteTimeOff struct {
	gw    Gateway
	audit *audit.Dispatcher
}

func NewDeleteTimeOff(gw Gateway, audit *audit.Dispatcher) *DeleteTimeOff {
	return &DeleteTimeOff{
		gw:    gw,
		audit: audit,
	}
}

func (uc *DeleteTimeOff) Execute(ctx context.Context, sessionID, password string, id int) error {
	if err := uc.gw.DeleteTimeOff(ctx, password, id); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:     audit.ActorAdmin,
		SessionID: sessionID,
		Action:    audit.ActionTimeOffDeleted,
		Entity:    "time_off",
		EntityID:  audit.IntID(id),
	})
	return nil
}

// ======================================================
// PREVIEW
// ======================================================

// Conflicts previews what blocking the range would collide with.
func Conflicts(
	ctx context.Context,
	gw Gateway,
	password string,
	barberID int,
	startDate, endDate string,
) (*backend.TimeOffConflicts, error) {

	if !validators.ValidateTimeOff(validators.TimeOffInput{StartDate: startDate, EndDate: endDate}) {
		return nil, httperr.ErrBusiness(ErrInvalidRange)
	}
	return gw.TimeOffConflicts(ctx, password, barberID, calendar.Date(startDate), calendar.Date(endDate))
}
