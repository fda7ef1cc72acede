package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/audit"
	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/httpresp"
	"github.com/BruksfildServices01/meister-web/internal/i18n"
	"github.com/BruksfildServices01/meister-web/internal/middleware"
	"github.com/BruksfildServices01/meister-web/internal/session"
	"github.com/BruksfildServices01/meister-web/internal/usecase/timeoff"
)

const adminPath = "/admin"

type timeOffForm struct {
	BarberID  int    `form:"barber_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Reason    string `form:"reason"`
}

// ReviewCache drops cached reviews so the next home page fetches fresh ones.
type ReviewCache interface {
	Invalidate(ctx context.Context, lang string) error
}

type AdminHandler struct {
	pages   *Pages
	gw      timeoff.Gateway
	verify  *timeoff.VerifyAdmin
	block   *timeoff.BlockTimeOff
	remove  *timeoff.DeleteTimeOff
	audit   *audit.Dispatcher
	reviews ReviewCache
	langs   []string
	limiter *middleware.Limiter
	log     *zap.Logger
}

func NewAdminHandler(
	pages *Pages,
	gw timeoff.Gateway,
	verify *timeoff.VerifyAdmin,
	block *timeoff.BlockTimeOff,
	remove *timeoff.DeleteTimeOff,
	audit *audit.Dispatcher,
	reviews ReviewCache,
	langs []string,
	limiter *middleware.Limiter,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		pages:   pages,
		gw:      gw,
		verify:  verify,
		block:   block,
		remove:  remove,
		audit:   audit,
		reviews: reviews,
		langs:   langs,
		limiter: limiter,
		log:     log,
	}
}

// ======================================================
// PAGE
// ======================================================

func (h *AdminHandler) Show(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	t := middleware.Translator(c)
	if !sess.Authorized() {
		h.pages.Render(c, http.StatusOK, "admin_login", nil)
		return
	}

	ctx := c.Request.Context()
	admin := sess.Admin()

	barbers, err := h.gw.ListBarbers(ctx)
	if err != nil {
		h.log.Warn("admin: load barbers failed", zap.Error(err))
		h.pages.Render(c, http.StatusBadGateway, "admin", gin.H{"Error": t.T("booking.errors.loadBarbers")})
		return
	}

	barberID, _ := strconv.Atoi(c.Query("barber_id"))
	if barberID == 0 && len(barbers) > 0 {
		barberID = barbers[0].ID
	}

	data := gin.H{
		"Barbers":  barbers,
		"BarberID": barberID,
		"Form": timeOffForm{
			BarberID:  barberID,
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
		},
	}

	if barberID != 0 {
		list, err := h.gw.ListTimeOff(ctx, admin.Password, barberID)
		if timeoff.IsUnauthorized(err) {
			h.expire(c)
			return
		}
		if err != nil {
			data["Error"] = adminMessage(err, t)
		}
		data["TimeOff"] = list
	}

	if start, end := c.Query("start_date"), c.Query("end_date"); start != "" && end != "" && barberID != 0 {
		preview, err := timeoff.Conflicts(ctx, h.gw, admin.Password, barberID, start, end)
		if err != nil {
			data["PreviewError"] = adminMessage(err, t)
		} else {
			data["Preview"] = preview
		}
	}

	if admin.Pending != nil && admin.Pending.BarberID == barberID {
		data["Pending"] = admin.Pending
	}

	logs, err := h.audit.Recent(ctx, audit.Filter{Limit: 20})
	if err != nil {
		h.log.Warn("admin: load activity failed", zap.Error(err))
	}
	data["Activity"] = activityDTOs(logs)
	data["AuditEnabled"] = h.audit != nil

	h.pages.Render(c, http.StatusOK, "admin", data)
}

// ======================================================
// LOGIN
// ======================================================

func (h *AdminHandler) Login(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	t := middleware.Translator(c)

	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		h.pages.Render(c, http.StatusTooManyRequests, "admin_login", gin.H{"Error": t.T("contact.rateLimited")})
		return
	}

	password := strings.TrimSpace(c.PostForm("password"))
	if err := h.verify.Execute(c.Request.Context(), sess.ID, password); err != nil {
		status := http.StatusBadGateway
		if httperr.IsBusiness(err, timeoff.ErrInvalidPassword) {
			status = http.StatusUnauthorized
		}
		h.pages.Render(c, status, "admin_login", gin.H{"Error": adminMessage(err, t)})
		return
	}

	sess.SetAdminPassword(password)
	redirect(c, adminPath)
}

func (h *AdminHandler) Logout(c *gin.Context) {
	middleware.CurrentSession(c).Logout()
	redirect(c, adminPath)
}

// ======================================================
// TIME-OFF
// ======================================================

func (h *AdminHandler) Create(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	t := middleware.Translator(c)

	var form timeOffForm
	_ = c.ShouldBind(&form)

	in := timeoff.BlockTimeOffInput{
		BarberID:  form.BarberID,
		StartDate: strings.TrimSpace(form.StartDate),
		EndDate:   strings.TrimSpace(form.EndDate),
		Reason:    strings.TrimSpace(form.Reason),
	}
	h.runBlock(c, sess, t, in)
}

// Force re-sends the refused request unchanged apart from the force flag.
func (h *AdminHandler) Force(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	t := middleware.Translator(c)

	pending := sess.Admin().Pending
	if pending == nil {
		redirect(c, adminPath)
		return
	}

	h.runBlock(c, sess, t, timeoff.BlockTimeOffInput{
		BarberID:  pending.BarberID,
		StartDate: pending.Request.StartDate,
		EndDate:   pending.Request.EndDate,
		Reason:    pending.Request.Reason,
		Force:     true,
	})
}

func (h *AdminHandler) CancelForce(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	barberID := 0
	if p := sess.Admin().Pending; p != nil {
		barberID = p.BarberID
	}
	sess.SetPendingForce(nil)
	redirect(c, barberPage(barberID))
}

func (h *AdminHandler) runBlock(c *gin.Context, sess *session.Session, t *i18n.Translator, in timeoff.BlockTimeOffInput) {
	admin := sess.Admin()

	_, err := h.block.Execute(c.Request.Context(), sess.ID, admin.Password, in)
	if conflict, ok := backend.IsConflict(err); ok {
		sess.SetPendingForce(&session.PendingForce{
			BarberID:  in.BarberID,
			Request:   in.Request(),
			Conflicts: conflict.Conflicts,
			Detail:    conflict.Detail,
		})
		redirect(c, barberPage(in.BarberID))
		return
	}
	if timeoff.IsUnauthorized(err) {
		h.expire(c)
		return
	}

	sess.SetPendingForce(nil)
	if err != nil {
		sess.Flash(adminMessage(err, t))
	} else {
		sess.Flash(t.T("admin.saved"))
	}
	redirect(c, barberPage(in.BarberID))
}

func (h *AdminHandler) Delete(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	t := middleware.Translator(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid time-off id")
		return
	}
	barberID, _ := strconv.Atoi(c.PostForm("barber_id"))

	err = h.remove.Execute(c.Request.Context(), sess.ID, sess.Admin().Password, id)
	switch {
	case timeoff.IsUnauthorized(err):
		h.expire(c)
		return
	case err != nil:
		sess.Flash(adminMessage(err, t))
	default:
		sess.Flash(t.T("admin.deleted"))
	}
	redirect(c, barberPage(barberID))
}

// RefreshReviews empties the reviews cache of every language.
func (h *AdminHandler) RefreshReviews(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	t := middleware.Translator(c)

	if h.reviews != nil {
		for _, lang := range h.langs {
			if err := h.reviews.Invalidate(c.Request.Context(), lang); err != nil {
				h.log.Warn("admin: reviews invalidate failed", zap.String("lang", lang), zap.Error(err))
				sess.Flash(t.T("admin.reviewsRefreshFailed"))
				redirect(c, adminPath)
				return
			}
		}
	}

	h.audit.Dispatch(audit.Event{
		Actor:     audit.ActorAdmin,
		SessionID: sess.ID,
		Action:    audit.ActionReviewsRefreshed,
		Entity:    "reviews",
	})
	sess.Flash(t.T("admin.reviewsRefreshed"))
	redirect(c, adminPath)
}

// expire drops a credential the backend no longer accepts.
func (h *AdminHandler) expire(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	sess.Logout()
	sess.Flash(middleware.Translator(c).T("admin.invalidPassword"))
	redirect(c, adminPath)
}

// ======================================================
// JSON
// ======================================================

func (h *AdminHandler) Conflicts(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	barberID, err := strconv.Atoi(c.Query("barber_id"))
	if err != nil || barberID <= 0 {
		httperr.BadRequest(c, "invalid_barber", "barber_id is required")
		return
	}

	res, err := timeoff.Conflicts(c.Request.Context(), h.gw, sess.Admin().Password, barberID, c.Query("start_date"), c.Query("end_date"))
	switch {
	case httperr.IsBusiness(err, timeoff.ErrInvalidRange):
		httperr.BadRequest(c, timeoff.ErrInvalidRange, middleware.Translator(c).T("admin.invalidRange"))
	case timeoff.IsUnauthorized(err):
		sess.Logout()
		httperr.Unauthorized(c, "admin_required", "admin password required")
	case err != nil:
		httperr.BadGateway(c, "backend_error", err.Error())
	default:
		httpresp.OK(c, res)
	}
}

func (h *AdminHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.audit.Recent(c.Request.Context(), audit.Filter{
		Actor:  c.Query("actor"),
		Action: c.Query("action"),
		Limit:  limit,
	})
	if err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "failed to list audit logs")
		return
	}
	httpresp.List(c, activityDTOs(logs))
}

func barberPage(barberID int) string {
	if barberID == 0 {
		return adminPath
	}
	return adminPath + "?barber_id=" + strconv.Itoa(barberID)
}

func adminMessage(err error, t *i18n.Translator) string {
	switch {
	case httperr.IsBusiness(err, timeoff.ErrInvalidPassword):
		return t.T("admin.invalidPassword")
	case httperr.IsBusiness(err, timeoff.ErrNoBarbers):
		return t.T("admin.noBarbers")
	case httperr.IsBusiness(err, timeoff.ErrInvalidRange):
		return t.T("admin.invalidRange")
	}
	if apiErr, ok := backend.IsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return t.T("booking.errors.generic")
}
