/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by the funding-ledger service.
 * Defining an interface decouples the business logic from the PostgreSQL
 * implementation and lets tests substitute in-memory fakes.
 *
 * @notes
 * - `RecordInvestment` and `AcceptCollaborationRequest` are atomic units: the
 *   implementation must apply all of their writes in a single transaction or
 *   none of them. They are the only paths allowed to mutate a project's
 *   funding fields and collaborator list respectively.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectNotActive      = errors.New("project is not accepting investments")
	ErrRequestNotFound       = errors.New("collaboration request not found")
	ErrRequestNotPending     = errors.New("collaboration request already decided")
	ErrPendingRequestExists  = errors.New("a pending request already exists for this project")
	ErrAlreadyCollaborator   = errors.New("user is already a collaborator on this project")
	ErrProjectFull           = errors.New("project has no open collaborator slots")
	ErrDuplicateConfirmation = errors.New("payment confirmation already processed")
	ErrProjectHasInvestments = errors.New("project has ledger entries and cannot be deleted")
)

// RecordInvestmentParams carries everything the atomic recording path needs.
type RecordInvestmentParams struct {
	ProjectID        uuid.UUID
	InvestorID       uuid.UUID
	Amount           int64
	PaymentReference string
}

// DailyTotal is the summed investment amount for one UTC calendar day.
type DailyTotal struct {
	Day    string // YYYY-MM-DD
	Amount int64
}

// SectorTotal is an investor's cumulative amount in one sector.
type SectorTotal struct {
	Sector string
	Amount int64
}

// SectorCount is the number of projects in one sector.
type SectorCount struct {
	Sector string
	Count  int
}

// SummaryCounts backs the platform-wide analytics summary.
type SummaryCounts struct {
	TotalProjects      int
	TotalFundingRaised int64
	TotalInvestors     int
	PendingRequests    int
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Project methods
	CreateProject(ctx context.Context, p *domain.Project) error
	GetProjectByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)
	UpdateProject(ctx context.Context, projectID uuid.UUID, upd domain.UpdateProjectPayload) (*domain.Project, error)
	UpdateProjectStatus(ctx context.Context, projectID uuid.UUID, status string) error
	ArchiveProject(ctx context.Context, projectID uuid.UUID) error
	IncrementProjectViews(ctx context.Context, projectID uuid.UUID) error
	ListProjects(ctx context.Context, opts domain.ProjectListOptions) ([]domain.Project, *domain.ProjectCursor, error)
	FindProjectsByFounder(ctx context.Context, founderID uuid.UUID) ([]domain.Project, error)
	FindProjectsByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Project, error)
	ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectCollaborator, error)
	IsCollaborator(ctx context.Context, projectID, userID uuid.UUID) (bool, error)

	// Ledger methods. RecordInvestment is the single mutation path for a
	// project's funding fields: it claims the payment reference, appends the
	// ledger entry, increments funding_raised and upserts the investor
	// position in one transaction. A reference that was already claimed
	// returns ErrDuplicateConfirmation with no writes.
	RecordInvestment(ctx context.Context, params RecordInvestmentParams) (*domain.Investment, error)
	ListInvestments(ctx context.Context, opts domain.InvestmentListOptions) ([]domain.Investment, error)
	InvestorPositions(ctx context.Context, investorID uuid.UUID) ([]domain.InvestorPosition, error)
	ProjectPositions(ctx context.Context, projectID uuid.UUID) ([]domain.InvestorPosition, error)
	FilterUnprocessedPaymentReferences(ctx context.Context, refs []string) ([]string, error)

	// Collaboration workflow methods. AcceptCollaborationRequest flips the
	// request to accepted and appends the collaborator row atomically.
	CreateCollaborationRequest(ctx context.Context, req *domain.CollaborationRequest) error
	GetCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error)
	ListRequestsByProject(ctx context.Context, projectID uuid.UUID) ([]domain.CollaborationRequest, error)
	ListRequestsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]domain.CollaborationRequest, error)
	AcceptCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error)
	RejectCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error)

	// Analytics reads. All are snapshots; none mutate state.
	DailyFundingTotals(ctx context.Context, since time.Time) ([]DailyTotal, error)
	SectorTotalsForInvestor(ctx context.Context, investorID uuid.UUID) ([]SectorTotal, error)
	SectorCounts(ctx context.Context) ([]SectorCount, error)
	PlatformSummaryCounts(ctx context.Context) (*SummaryCounts, error)
	RequestStatusCounts(ctx context.Context) (*domain.RequestStatusCounts, error)
	RequestTimesForFounder(ctx context.Context, founderID uuid.UUID, since time.Time) ([]time.Time, error)
}
