/**
 * @description
 * This file contains the core business logic for the funding-ledger service.
 * The `Service` struct orchestrates project lifecycle operations and checkout
 * intent creation, coordinating between the database repository, the payment
 * gateway client, and the message broker.
 *
 * Key features:
 * - Project CRUD with owner authorization and soft archival.
 * - Checkout-intent creation with per-investor rate limiting; the project id,
 *   investor id and amount ride along as checkout metadata so that the later
 *   confirmation event is self-describing.
 * - All funding mutation flows through the recorder (recorder.go); nothing in
 *   this file writes funding fields.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/paymentgateway, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
	"github.com/Bi11y4real/Startup-connect/pkg/paymentgateway"
	"github.com/Bi11y4real/Startup-connect/pkg/rabbitmq"
)

const defaultMaxCollaborators = 5

var (
	ErrInvalidAmount           = errors.New("investment amount must be greater than zero")
	ErrMissingFields           = errors.New("required fields are missing")
	ErrNotProjectOwner         = errors.New("only the project owner may perform this action")
	ErrOwnProject              = errors.New("founders cannot apply to their own project")
	ErrInvalidDecision         = errors.New("decision must be accept or reject")
	ErrInvalidStatusTransition = errors.New("invalid project status transition")
	ErrRateLimited             = errors.New("too many investment attempts; slow down")
)

// GatewayClient is the slice of the payment provider client the service uses.
type GatewayClient interface {
	CreateCheckout(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutSession, error)
	ListCompletedCheckouts(ctx context.Context, since time.Time) ([]paymentgateway.Event, error)
}

// RateLimiter throttles checkout-intent creation per investor.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Options carries the policy knobs the service is constructed with.
type Options struct {
	Currency           string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	EventExchange      string
	// AllowOverfunding keeps projects open past their goal (the platform's
	// historical behavior). When false a project is marked completed on
	// reaching its goal; confirmed money is still always recorded.
	AllowOverfunding         bool
	InvestRateLimitPerMinute int
}

// Service provides the core business logic for the funding ledger.
type Service struct {
	repo        store.Repository
	gateway     GatewayClient
	producer    rabbitmq.Publisher
	rateLimiter RateLimiter
	opts        Options
}

// NewService creates a new funding-ledger service instance.
func NewService(repo store.Repository, gateway GatewayClient, producer rabbitmq.Publisher, opts Options) *Service {
	if opts.EventExchange == "" {
		opts.EventExchange = "startupconnect.events"
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &Service{
		repo:     repo,
		gateway:  gateway,
		producer: producer,
		opts:     opts,
	}
}

// SetRateLimiter wires an optional distributed rate limiter. Without one,
// checkout-intent creation is not throttled.
func (s *Service) SetRateLimiter(rl RateLimiter) {
	s.rateLimiter = rl
}

// CreateProject registers a new project owned by the founder.
func (s *Service) CreateProject(ctx context.Context, founderID uuid.UUID, payload domain.CreateProjectPayload) (*domain.Project, error) {
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Sector) == "" {
		return nil, ErrMissingFields
	}
	if payload.FundingGoal <= 0 {
		return nil, fmt.Errorf("%w: funding goal must be positive", ErrMissingFields)
	}

	maxCollaborators := payload.MaxCollaborators
	if maxCollaborators <= 0 {
		maxCollaborators = defaultMaxCollaborators
	}

	project := &domain.Project{
		ID:               uuid.New(),
		FounderID:        founderID,
		Title:            strings.TrimSpace(payload.Title),
		Description:      payload.Description,
		Sector:           payload.Sector,
		Industry:         payload.Industry,
		Status:           domain.ProjectStatusActive,
		FundingGoal:      payload.FundingGoal,
		Tags:             payload.Tags,
		OpenRoles:        payload.OpenRoles,
		MaxCollaborators: maxCollaborators,
		ImageURL:         payload.ImageURL,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	log.Printf("level=info component=app op=create_project project_id=%s founder_id=%s goal=%d", project.ID, founderID, project.FundingGoal)
	return project, nil
}

// GetProject fetches a project and bumps its view counter. The view bump is
// best-effort background bookkeeping and never fails the read.
func (s *Service) GetProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementProjectViews(ctx, projectID); err != nil {
		log.Printf("level=warn component=app op=get_project msg=\"view increment failed\" project_id=%s err=%v", projectID, err)
	}
	return project, nil
}

// UpdateProject applies a partial update after verifying ownership.
func (s *Service) UpdateProject(ctx context.Context, projectID, actorID uuid.UUID, upd domain.UpdateProjectPayload) (*domain.Project, error) {
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.FounderID != actorID {
		return nil, ErrNotProjectOwner
	}
	return s.repo.UpdateProject(ctx, projectID, upd)
}

var allowedStatusTransitions = map[string][]string{
	domain.ProjectStatusActive:    {domain.ProjectStatusCompleted, domain.ProjectStatusArchived},
	domain.ProjectStatusCompleted: {domain.ProjectStatusArchived},
}

// ChangeProjectStatus transitions the project lifecycle. Archived is terminal
// and projects with ledger entries are never hard-deleted; archival is the
// only removal path.
func (s *Service) ChangeProjectStatus(ctx context.Context, projectID, actorID uuid.UUID, status string) error {
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.FounderID != actorID {
		return ErrNotProjectOwner
	}

	allowed := false
	for _, next := range allowedStatusTransitions[project.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, project.Status, status)
	}

	if status == domain.ProjectStatusArchived {
		err = s.repo.ArchiveProject(ctx, projectID)
	} else {
		err = s.repo.UpdateProjectStatus(ctx, projectID, status)
	}
	if err != nil {
		return err
	}
	log.Printf("level=info component=app op=change_status project_id=%s from=%s to=%s", projectID, project.Status, status)
	return nil
}

// ListProjects returns a filtered page for project discovery.
func (s *Service) ListProjects(ctx context.Context, opts domain.ProjectListOptions) ([]domain.Project, *domain.ProjectCursor, error) {
	return s.repo.ListProjects(ctx, opts)
}

// FounderProjects returns all projects owned by the founder.
func (s *Service) FounderProjects(ctx context.Context, founderID uuid.UUID) ([]domain.Project, error) {
	return s.repo.FindProjectsByFounder(ctx, founderID)
}

// FounderStats computes the dashboard rollup for a founder's projects.
func (s *Service) FounderStats(ctx context.Context, founderID uuid.UUID) (*domain.FounderStats, error) {
	projects, err := s.repo.FindProjectsByFounder(ctx, founderID)
	if err != nil {
		return nil, err
	}

	var stats domain.FounderStats
	for i := range projects {
		p := &projects[i]
		if p.Status == domain.ProjectStatusActive {
			stats.ActiveProjects++
		}
		stats.TotalFunding += p.FundingRaised
		stats.TotalFundingGoal += p.FundingGoal
		stats.TotalViews += p.Views

		members, err := s.repo.ListCollaborators(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		stats.TotalCollaborators += len(members)

		requests, err := s.repo.ListRequestsByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for i := range requests {
			if requests[i].IsPending() {
				stats.PendingRequests++
			}
		}
	}
	return &stats, nil
}

// InvestorPortfolio returns the projects an investor has backed together with
// their cumulative positions.
func (s *Service) InvestorPortfolio(ctx context.Context, investorID uuid.UUID) ([]domain.Project, []domain.InvestorPosition, error) {
	projects, err := s.repo.FindProjectsByInvestor(ctx, investorID)
	if err != nil {
		return nil, nil, err
	}
	positions, err := s.repo.InvestorPositions(ctx, investorID)
	if err != nil {
		return nil, nil, err
	}
	return projects, positions, nil
}

// InvestorStats summarizes an investor's portfolio.
func (s *Service) InvestorStats(ctx context.Context, investorID uuid.UUID) (*domain.InvestorStats, error) {
	projects, positions, err := s.InvestorPortfolio(ctx, investorID)
	if err != nil {
		return nil, err
	}

	var stats domain.InvestorStats
	for _, pos := range positions {
		stats.TotalInvested += pos.Amount
	}
	stats.TotalDeals = len(projects)
	for _, p := range projects {
		if p.Status == domain.ProjectStatusActive {
			stats.ActiveDeals++
		}
	}
	return &stats, nil
}

// ProjectLedger lists a project's ledger entries, newest first.
func (s *Service) ProjectLedger(ctx context.Context, projectID uuid.UUID) ([]domain.Investment, error) {
	return s.repo.ListInvestments(ctx, domain.InvestmentListOptions{ProjectID: &projectID})
}

// CreateInvestmentIntent validates the request, applies the per-investor rate
// limit and opens a provider checkout session. The recorder is keyed by the
// provider's transaction id, so an intent that times out client-side but
// completes later is still honored.
func (s *Service) CreateInvestmentIntent(ctx context.Context, projectID, investorID uuid.UUID, amount int64) (*paymentgateway.CheckoutSession, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.AcceptsInvestment() {
		return nil, store.ErrProjectNotActive
	}

	if s.rateLimiter != nil && s.opts.InvestRateLimitPerMinute > 0 {
		count, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, "invest_intent", investorID.String(), s.opts.InvestRateLimitPerMinute, time.Minute)
		if err != nil {
			// A broken limiter must not block money coming in.
			log.Printf("level=warn component=app op=create_intent msg=\"rate limiter unavailable; allowing\" investor_id=%s err=%v", investorID, err)
		} else if count > s.opts.InvestRateLimitPerMinute {
			log.Printf("level=warn component=app op=create_intent outcome=rate_limited investor_id=%s retry_after=%d", investorID, retryAfter)
			return nil, ErrRateLimited
		}
	}

	session, err := s.gateway.CreateCheckout(ctx, paymentgateway.CheckoutParams{
		Amount:     amount,
		Currency:   s.opts.Currency,
		SuccessURL: s.opts.CheckoutSuccessURL,
		CancelURL:  s.opts.CheckoutCancelURL,
		Metadata: paymentgateway.CheckoutMetadata{
			ProjectID:  projectID.String(),
			InvestorID: investorID.String(),
			Amount:     amount,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	log.Printf("level=info component=app op=create_intent project_id=%s investor_id=%s amount=%d checkout_id=%s", projectID, investorID, amount, session.CheckoutID)
	return session, nil
}
