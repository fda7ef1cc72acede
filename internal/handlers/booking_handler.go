package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/domain/booking"
	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
	"github.com/BruksfildServices01/meister-web/internal/dto"
	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/httpresp"
	"github.com/BruksfildServices01/meister-web/internal/middleware"
	usecase "github.com/BruksfildServices01/meister-web/internal/usecase/booking"
)

const bookingPath = "/booking"

type BookingHandler struct {
	pages  *Pages
	submit *usecase.SubmitBooking
	wait   time.Duration
	log    *zap.Logger
}

// NewBookingHandler waits up to wait for pending availability before a
// page is rendered; what is still loading afterwards renders as loading.
func NewBookingHandler(pages *Pages, submit *usecase.SubmitBooking, wait time.Duration, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		pages:  pages,
		submit: submit,
		wait:   wait,
		log:    log,
	}
}

// ======================================================
// PAGES
// ======================================================

func (h *BookingHandler) Show(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	w := sess.Wizard
	t := middleware.Translator(c)
	ctx := c.Request.Context()

	if w.Snapshot(t).Step == booking.StepConfirmed {
		w.Restart()
	}
	_ = w.LoadBarbers(ctx)

	if raw := c.Query("barber"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err == nil {
			err = w.Preselect(ctx, id)
		}
		if err != nil {
			sess.Flash(t.T("booking.barber.label"))
		}
		redirect(c, bookingPath)
		return
	}

	h.settle(ctx, w)

	view := buildBookingView(w, t)
	view.Autofocus = c.Query("focus") == "calendar"

	h.pages.Render(c, http.StatusOK, "booking", gin.H{
		"Booking": view,
		"Refresh": view.Refresh,
	})
}

func (h *BookingHandler) Thanks(c *gin.Context) {
	t := middleware.Translator(c)
	snap := middleware.CurrentSession(c).Wizard.Snapshot(t)
	if snap.Step != booking.StepConfirmed {
		redirect(c, bookingPath)
		return
	}

	summary := gin.H{
		"Date":    t.LongDate(snap.Selection.Date),
		"Time":    snap.Selection.Slot,
		"Service": t.T(snap.Service.TitleKey()),
	}
	if snap.Barber != nil {
		summary["Barber"] = snap.Barber.Name
	}
	h.pages.Render(c, http.StatusOK, "thanks", gin.H{"Summary": summary})
}

// settle gives in-flight fetches of the visible step a short head start.
func (h *BookingHandler) settle(ctx context.Context, w *booking.Wizard) {
	if h.wait <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, h.wait)
	defer cancel()
	w.AwaitMonth(ctx)
	w.AwaitSlots(ctx)
}

// ======================================================
// FORM ACTIONS
// ======================================================

func (h *BookingHandler) SelectBarber(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	id, err := strconv.Atoi(c.PostForm("barber_id"))
	if err != nil {
		h.fail(c, httperr.ErrBusiness(booking.ErrBarberRequired))
		return
	}
	if err := sess.Wizard.SelectBarber(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	if c.PostForm("next") != "" {
		_ = sess.Wizard.Next()
	}
	redirect(c, bookingPath)
}

func (h *BookingHandler) ChangeMonth(c *gin.Context) {
	month, err := calendar.Parse(c.PostForm("month"))
	if err == nil {
		middleware.CurrentSession(c).Wizard.ChangeMonth(c.Request.Context(), month)
	}
	redirect(c, bookingPath)
}

func (h *BookingHandler) SelectDate(c *gin.Context) {
	w := middleware.CurrentSession(c).Wizard
	d, err := calendar.Parse(c.PostForm("date"))
	if err != nil {
		h.fail(c, httperr.ErrBusiness(booking.ErrDateRequired))
		return
	}
	if err := w.SelectDate(c.Request.Context(), d); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, bookingPath)
}

func (h *BookingHandler) SelectService(c *gin.Context) {
	w := middleware.CurrentSession(c).Wizard
	keepCustomer(c, w)
	if err := w.SelectService(c.Request.Context(), c.PostForm("service_type")); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, bookingPath)
}

func (h *BookingHandler) SelectSlot(c *gin.Context) {
	w := middleware.CurrentSession(c).Wizard
	keepCustomer(c, w)
	if err := w.SelectSlot(c.PostForm("slot")); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, bookingPath)
}

func (h *BookingHandler) Next(c *gin.Context) {
	_ = middleware.CurrentSession(c).Wizard.Next()
	redirect(c, bookingPath)
}

func (h *BookingHandler) Back(c *gin.Context) {
	w := middleware.CurrentSession(c).Wizard
	keepCustomer(c, w)
	w.Back()
	redirect(c, bookingPath)
}

func (h *BookingHandler) Submit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	keepCustomer(c, sess.Wizard)

	ap, err := h.submit.Execute(c.Request.Context(), sess.ID, sess.Wizard)
	if err != nil {
		redirect(c, bookingPath)
		return
	}

	h.log.Info("appointment booked",
		zap.Int("id", ap.ID),
		zap.Int("barber", ap.Barber),
		zap.String("start_at", ap.StartAt),
	)
	redirect(c, bookingPath+"/thanks")
}

func (h *BookingHandler) Restart(c *gin.Context) {
	middleware.CurrentSession(c).Wizard.Restart()
	redirect(c, "/")
}

func (h *BookingHandler) fail(c *gin.Context, err error) {
	middleware.CurrentSession(c).Flash(booking.Message(err, middleware.Translator(c)))
	redirect(c, bookingPath)
}

// keepCustomer stores whatever contact fields came with the form so a
// step change never loses typed input.
func keepCustomer(c *gin.Context, w *booking.Wizard) {
	name, okName := c.GetPostForm("name")
	email, okEmail := c.GetPostForm("email")
	phone, okPhone := c.GetPostForm("phone")
	if !okName && !okEmail && !okPhone {
		return
	}
	w.SetCustomer(booking.Customer{Name: name, Email: email, Phone: phone})
}

// ======================================================
// CALENDAR API
// ======================================================

// Calendar returns the visible month. With ?wait=1 it holds the answer
// until a pending month settles or the wait elapses.
func (h *BookingHandler) Calendar(c *gin.Context) {
	w := middleware.CurrentSession(c).Wizard
	t := middleware.Translator(c)

	if c.Query("wait") == "1" {
		h.settle(c.Request.Context(), w)
	}
	httpresp.OK(c, buildCalendar(w.Grid(t), w.Snapshot(t), t))
}

// CalendarKey runs one key press of the grid.
func (h *BookingHandler) CalendarKey(c *gin.Context) {
	w := middleware.CurrentSession(c).Wizard
	t := middleware.Translator(c)

	var req dto.CalendarKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "from and key are required")
		return
	}
	from, err := calendar.Parse(strings.TrimSpace(req.From))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "from must be YYYY-MM-DD")
		return
	}

	action, err := w.HandleKey(c.Request.Context(), from, calendar.Key(req.Key))
	if err != nil {
		httperr.Unprocessable(c, "key_rejected", booking.Message(err, t))
		return
	}

	httpresp.OK(c, dto.CalendarKeyResponse{
		Action:   action,
		Reload:   action.Kind == calendar.ActionSelect || action.Kind == calendar.ActionChangeMonth,
		Calendar: buildCalendar(w.Grid(t), w.Snapshot(t), t),
	})
}
