package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/audit"
	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/config"
	"github.com/BruksfildServices01/meister-web/internal/handlers"
	"github.com/BruksfildServices01/meister-web/internal/i18n"
	"github.com/BruksfildServices01/meister-web/internal/middleware"
	"github.com/BruksfildServices01/meister-web/internal/observability/metrics"
	"github.com/BruksfildServices01/meister-web/internal/reviews"
	"github.com/BruksfildServices01/meister-web/internal/session"
	ucBooking "github.com/BruksfildServices01/meister-web/internal/usecase/booking"
	ucContact "github.com/BruksfildServices01/meister-web/internal/usecase/contact"
	ucTimeOff "github.com/BruksfildServices01/meister-web/internal/usecase/timeoff"
	"github.com/BruksfildServices01/meister-web/internal/web"
)

// Deps are the long-lived collaborators built in main.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Bundle   *i18n.Bundle
	Backend  *backend.Client
	Sessions *session.Store
	Reviews  *reviews.Service
	Audit    *audit.Dispatcher
	Redis    *redis.Client
	Metrics  *metrics.WebMetrics
	Gatherer prometheus.Gatherer
}

func RegisterRoutes(r *gin.Engine, d Deps) error {
	cfg := d.Config

	tmpl, err := web.Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestLogger(d.Log, d.Metrics))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// USE CASES
	// ======================================================
	submitBookingUC := ucBooking.NewSubmitBooking(d.Audit)
	sendContactUC := ucContact.NewSendContact(d.Backend, d.Audit)

	verifyAdminUC := ucTimeOff.NewVerifyAdmin(d.Backend, cfg.AdminPasswordHash, d.Audit)
	blockTimeOffUC := ucTimeOff.NewBlockTimeOff(d.Backend, d.Audit)
	deleteTimeOffUC := ucTimeOff.NewDeleteTimeOff(d.Backend, d.Audit)

	// ======================================================
	// HANDLERS
	// ======================================================
	pages := handlers.NewPages(d.Bundle)

	homeHandler := handlers.NewHomeHandler(pages, d.Backend, d.Reviews, d.Log)
	bookingHandler := handlers.NewBookingHandler(pages, submitBookingUC, cfg.AvailabilityWait, d.Log)
	contactHandler := handlers.NewContactHandler(
		pages,
		sendContactUC,
		middleware.NewLimiter(cfg.ContactRatePerMin, cfg.ContactRatePerMin),
		d.Log,
	)
	adminHandler := handlers.NewAdminHandler(
		pages,
		d.Backend,
		verifyAdminUC,
		blockTimeOffUC,
		deleteTimeOffUC,
		d.Audit,
		reviewCache(d.Reviews),
		d.Bundle.Languages(),
		middleware.NewLimiter(10, 5),
		d.Log,
	)
	healthHandler := handlers.NewHealthHandler(d.Redis)

	apiLimiter := middleware.NewLimiter(240, 60)

	// ======================================================
	// INFRA
	// ======================================================
	r.GET("/health", healthHandler.Health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	r.StaticFS("/static", web.Static())

	// ======================================================
	// PAGES (HTML)
	// ======================================================
	site := r.Group("/")
	site.Use(middleware.LanguageMiddleware(d.Bundle))
	site.Use(middleware.SessionMiddleware(d.Sessions, middleware.SessionConfig{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	}))
	{
		site.GET("/", homeHandler.Show)

		site.GET("/contact", contactHandler.Show)
		site.POST("/contact", contactHandler.Submit)

		// ------------------------------
		// BOOKING
		// ------------------------------
		booking := site.Group("/booking")
		{
			booking.GET("", bookingHandler.Show)
			booking.GET("/thanks", bookingHandler.Thanks)

			booking.POST("/barber", bookingHandler.SelectBarber)
			booking.POST("/month", bookingHandler.ChangeMonth)
			booking.POST("/date", bookingHandler.SelectDate)
			booking.POST("/service", bookingHandler.SelectService)
			booking.POST("/slot", bookingHandler.SelectSlot)
			booking.POST("/next", bookingHandler.Next)
			booking.POST("/back", bookingHandler.Back)
			booking.POST("/submit", bookingHandler.Submit)
			booking.POST("/restart", bookingHandler.Restart)

			calendarAPI := booking.Group("/calendar")
			calendarAPI.Use(middleware.RateLimitMiddleware(apiLimiter, d.Log))
			{
				calendarAPI.GET("", bookingHandler.Calendar)
				calendarAPI.POST("/key", bookingHandler.CalendarKey)
			}
		}

		// ------------------------------
		// ADMIN
		// ------------------------------
		site.GET("/admin", adminHandler.Show)
		site.POST("/admin/login", adminHandler.Login)
		site.POST("/admin/logout", adminHandler.Logout)

		admin := site.Group("/admin")
		admin.Use(middleware.RequireAdmin("/admin"))
		{
			admin.POST("/timeoff", adminHandler.Create)
			admin.POST("/timeoff/force", adminHandler.Force)
			admin.POST("/timeoff/cancel", adminHandler.CancelForce)
			admin.POST("/timeoff/:id/delete", adminHandler.Delete)
			admin.POST("/reviews/refresh", adminHandler.RefreshReviews)

			adminAPI := admin.Group("/api")
			adminAPI.Use(middleware.RateLimitMiddleware(apiLimiter, d.Log))
			{
				adminAPI.GET("/conflicts", adminHandler.Conflicts)
				adminAPI.GET("/activity", adminHandler.Activity)
			}
		}
	}

	r.NoRoute(
		middleware.LanguageMiddleware(d.Bundle),
		pages.NotFound,
	)

	return nil
}

// reviewCache keeps a nil service from becoming a non-nil interface.
func reviewCache(s *reviews.Service) handlers.ReviewCache {
	if s == nil {
		return nil
	}
	return s
}
