// Package http wires the chi route tree and the HTTP server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/prometheus"
	"github.com/wealthdesk/wealthdesk/internal/interfaces/http/handlers"
	"github.com/wealthdesk/wealthdesk/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware for the route tree.
type RouterConfig struct {
	ClientHandler    *handlers.ClientHandler
	PortfolioHandler *handlers.PortfolioHandler
	ScheduleHandler  *handlers.ScheduleHandler
	InsightsHandler  *handlers.InsightsHandler
	HealthHandler    *handlers.HealthHandler

	RateLimiter *middleware.RateLimiter
	CORS        middleware.CORSConfig

	Logger  logging.Logger
	Metrics *prometheus.Metrics
}

// NewRouter builds the full route tree: probes and metrics at the root,
// resources under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))

	r.Get("/healthz", cfg.HealthHandler.Liveness)
	r.Get("/readyz", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", cfg.Metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Handler)
		}

		api.Route("/clients", func(cr chi.Router) {
			cr.Get("/", cfg.ClientHandler.List)
			cr.Post("/", cfg.ClientHandler.Create)

			cr.Route("/{clientID}", func(one chi.Router) {
				one.Get("/", cfg.ClientHandler.Get)
				one.Put("/", cfg.ClientHandler.Update)
				one.Delete("/", cfg.ClientHandler.Delete)
				one.Post("/convert", cfg.ClientHandler.Convert)
				one.Put("/status", cfg.ClientHandler.ChangeStatus)

				one.Get("/transactions", cfg.PortfolioHandler.ListTransactions)
				one.Post("/transactions", cfg.PortfolioHandler.RecordTransaction)
				one.Delete("/transactions/{transactionID}", cfg.PortfolioHandler.DeleteTransaction)

				one.Get("/portfolio", cfg.PortfolioHandler.Summary)
				one.Get("/portfolio/transactions", cfg.PortfolioHandler.TransactionSummary)
				one.Get("/portfolio/performance", cfg.PortfolioHandler.Performance)
			})
		})

		api.Route("/tasks", func(tr chi.Router) {
			tr.Get("/", cfg.ScheduleHandler.ListTasks)
			tr.Post("/", cfg.ScheduleHandler.CreateTask)
			tr.Get("/due", cfg.ScheduleHandler.DueTasks)
			tr.Put("/{taskID}", cfg.ScheduleHandler.UpdateTask)
			tr.Delete("/{taskID}", cfg.ScheduleHandler.DeleteTask)
			tr.Post("/{taskID}/complete", cfg.ScheduleHandler.CompleteTask)
			tr.Post("/{taskID}/cancel", cfg.ScheduleHandler.CancelTask)
		})

		api.Route("/appointments", func(ar chi.Router) {
			ar.Get("/", cfg.ScheduleHandler.ListAppointments)
			ar.Post("/", cfg.ScheduleHandler.CreateAppointment)
			ar.Get("/upcoming", cfg.ScheduleHandler.UpcomingAppointments)
			ar.Put("/{appointmentID}", cfg.ScheduleHandler.RescheduleAppointment)
			ar.Delete("/{appointmentID}", cfg.ScheduleHandler.CancelAppointment)
			ar.Post("/{appointmentID}/complete", cfg.ScheduleHandler.CompleteAppointment)
		})

		api.Route("/insights", func(ir chi.Router) {
			ir.Get("/book", cfg.InsightsHandler.Book)
			ir.Get("/drilldown", cfg.InsightsHandler.Drilldown)
		})
	})

	return r
}
