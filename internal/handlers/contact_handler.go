package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/middleware"
	"github.com/BruksfildServices01/meister-web/internal/usecase/contact"
	"github.com/BruksfildServices01/meister-web/internal/validators"
)

type contactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Message string `form:"message"`
}

type ContactHandler struct {
	pages   *Pages
	send    *contact.SendContact
	limiter *middleware.Limiter
	log     *zap.Logger
}

func NewContactHandler(pages *Pages, send *contact.SendContact, limiter *middleware.Limiter, log *zap.Logger) *ContactHandler {
	return &ContactHandler{
		pages:   pages,
		send:    send,
		limiter: limiter,
		log:     log,
	}
}

func (h *ContactHandler) Show(c *gin.Context) {
	h.pages.Render(c, http.StatusOK, "contact", gin.H{"Form": contactForm{}})
}

func (h *ContactHandler) Submit(c *gin.Context) {
	t := middleware.Translator(c)

	var form contactForm
	_ = c.ShouldBind(&form)

	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		h.pages.Render(c, http.StatusTooManyRequests, "contact", gin.H{
			"Form":  form,
			"Error": t.T("contact.rateLimited"),
		})
		return
	}

	err := h.send.Execute(c.Request.Context(), middleware.CurrentSession(c).ID, validators.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	})

	switch {
	case err == nil:
		middleware.CurrentSession(c).Flash(t.T("contact.success"))
		redirect(c, "/contact")
	case httperr.IsBusiness(err, contact.ErrInvalid):
		h.pages.Render(c, http.StatusUnprocessableEntity, "contact", gin.H{
			"Form":  form,
			"Error": t.T("alerts.contactInvalid"),
		})
	default:
		h.log.Warn("contact: send failed", zap.Error(err))
		msg := t.T("contact.error")
		if apiErr, ok := backend.IsAPIError(err); ok && apiErr.Status < http.StatusInternalServerError && apiErr.Message != "" {
			msg = apiErr.Message
		}
		h.pages.Render(c, http.StatusBadGateway, "contact", gin.H{
			"Form":  form,
			"Error": msg,
		})
	}
}
