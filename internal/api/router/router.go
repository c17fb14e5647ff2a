package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clipperdesk/clipperdesk/internal/booking"
	"github.com/clipperdesk/clipperdesk/internal/http/handlers"
	httpmiddleware "github.com/clipperdesk/clipperdesk/internal/http/middleware"
	"github.com/clipperdesk/clipperdesk/internal/messaging"
	"github.com/clipperdesk/clipperdesk/internal/payments"
	"github.com/clipperdesk/clipperdesk/internal/staff"
	"github.com/clipperdesk/clipperdesk/internal/timeclock"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	BookingHandler   *booking.Handler
	PaymentsHandler  *payments.Handler
	StripeWebhook    *payments.StripeWebhookHandler
	MessagingHandler *messaging.Handler
	StaffHandler     *staff.Handler
	TimeclockHandler *timeclock.Handler
	LiveHub          *timeclock.LiveHub
	AuthHandler      *handlers.AuthOTPHandler
	OwnerDashboard   *handlers.OwnerDashboardHandler
	TimesheetExport  *handlers.TimesheetExportHandler

	StaffAuthSecret    string
	OwnerAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks, client booking)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.StripeWebhook != nil {
			public.Post("/webhooks/stripe", cfg.StripeWebhook.Handle)
		}
		if cfg.MessagingHandler != nil {
			public.Route("/messaging", func(r chi.Router) {
				r.Post("/twilio/webhook", cfg.MessagingHandler.TwilioWebhook)
			})
		}
		if cfg.AuthHandler != nil {
			public.Route("/auth/otp", func(r chi.Router) {
				r.Post("/request", cfg.AuthHandler.RequestCode)
				r.Post("/verify", cfg.AuthHandler.VerifyCode)
			})
		}
		if cfg.BookingHandler != nil {
			public.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.BookingHandler.CreateAppointment)
				r.Get("/{appointmentID}", cfg.BookingHandler.GetAppointment)
				r.Delete("/{appointmentID}", cfg.BookingHandler.CancelAppointment)
			})
		}
		if cfg.PaymentsHandler != nil {
			public.Route("/payments", func(r chi.Router) {
				r.Post("/checkout", cfg.PaymentsHandler.CreateCheckout)
			})
		}
	})

	// Staff routes (barber token from the OTP login)
	if cfg.StaffAuthSecret != "" {
		r.Route("/timeclock", func(staffRoutes chi.Router) {
			staffRoutes.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))
			if cfg.TimeclockHandler != nil {
				staffRoutes.Post("/clock", cfg.TimeclockHandler.ClockAction)
				staffRoutes.Get("/status", cfg.TimeclockHandler.Status)
			}
			if cfg.LiveHub != nil {
				staffRoutes.Get("/live", cfg.LiveHub.ServeWS)
			}
		})
	}

	// Owner routes (protected by the owner JWT)
	if cfg.OwnerAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.OwnerJWT(cfg.OwnerAuthSecret))
			if cfg.StaffHandler != nil {
				admin.Route("/staff", func(r chi.Router) {
					r.Post("/", cfg.StaffHandler.CreateBarber)
					r.Get("/", cfg.StaffHandler.ListBarbers)
					r.Delete("/{barberID}", cfg.StaffHandler.DeactivateBarber)
				})
			}
			if cfg.TimeclockHandler != nil {
				admin.Get("/timeclock/summaries", cfg.TimeclockHandler.Summaries)
			}
			if cfg.BookingHandler != nil {
				admin.Get("/appointments", cfg.BookingHandler.ListDay)
			}
			if cfg.TimesheetExport != nil {
				admin.Post("/timesheets/export", cfg.TimesheetExport.ExportDay)
			}
			if cfg.OwnerDashboard != nil {
				admin.Get("/dashboard", cfg.OwnerDashboard.GetDashboardOverview)
			}
		})
	}

	return r
}
