/**
 * @description
 * This file sets up the HTTP router for the funding-ledger service. It defines
 * the API endpoints, associates them with their corresponding handlers, and
 * applies middleware for logging, recovery, CORS, authentication and
 * capability checks.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for chi.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
)

// RouterOptions carries everything the router needs beyond the handlers.
type RouterOptions struct {
	Auth           AuthOptions
	AllowedOrigins []string
}

// FundingRoutes creates and returns the router for the funding-ledger service.
func FundingRoutes(h *FundingHandlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// The provider authenticates with its signature, not a bearer token.
	r.Post("/webhooks/payment", h.PaymentWebhookHandler)

	// Public discovery endpoints.
	r.Get("/projects", h.ListProjectsHandler)
	r.Get("/projects/{projectID}", h.GetProjectHandler)
	r.Get("/projects/{projectID}/team", h.ProjectTeamHandler)
	r.Get("/analytics/sectors", h.SectorDistributionHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.Auth))

		r.With(RequireCapability(domain.CapCreateProject)).Post("/projects", h.CreateProjectHandler)
		r.Patch("/projects/{projectID}", h.UpdateProjectHandler)
		r.Put("/projects/{projectID}/status", h.ChangeProjectStatusHandler)
		r.Get("/projects/{projectID}/investments", h.ProjectInvestmentsHandler)

		r.With(RequireCapability(domain.CapInvest)).Post("/projects/{projectID}/invest", h.InvestHandler)

		r.With(RequireCapability(domain.CapApplyToProject)).Post("/projects/{projectID}/requests", h.SubmitRequestHandler)
		r.With(RequireCapability(domain.CapReviewRequests)).Get("/projects/{projectID}/requests", h.ProjectRequestsHandler)
		r.With(RequireCapability(domain.CapReviewRequests)).Put("/requests/{requestID}/decision", h.DecideRequestHandler)
		r.Get("/requests/mine", h.MyRequestsHandler)

		r.Get("/founders/me/projects", h.MyProjectsHandler)
		r.Get("/founders/me/stats", h.FounderStatsHandler)
		r.Get("/investors/me/portfolio", h.PortfolioHandler)
		r.Get("/investors/me/stats", h.InvestorStatsHandler)

		r.Get("/analytics/daily-activity", h.DailyActivityHandler)
		r.Get("/analytics/sector-allocation", h.SectorAllocationHandler)
		r.Get("/analytics/funding-overview", h.FundingOverviewHandler)
		r.Get("/analytics/application-trends", h.ApplicationTrendsHandler)
		r.Get("/analytics/summary", h.PlatformSummaryHandler)
		r.Get("/analytics/request-status", h.RequestStatusDistributionHandler)
	})

	return r
}
