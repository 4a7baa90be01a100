/**
 * @description
 * This file defines the core domain models for the funding-ledger service.
 * These structs represent the main entities used throughout the service's
 * business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are stored as `int64` in the smallest currency unit (cents) to
 *   avoid floating-point inaccuracies with financial data.
 * - `FundingRaised` is a denormalized aggregate over the investments ledger;
 *   it is only ever mutated through the Investment Recorder's atomic path.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project status values. A project accepts money only while active; archived
// is terminal.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Project represents a startup project raising funds on the platform.
// This struct maps directly to the `projects` table in the database.
type Project struct {
	ID               uuid.UUID `json:"id"`
	FounderID        uuid.UUID `json:"founder_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Sector           string    `json:"sector"`
	Industry         string    `json:"industry"`
	Status           string    `json:"status"`
	FundingGoal      int64     `json:"funding_goal"`   // in cents
	FundingRaised    int64     `json:"funding_raised"` // in cents
	Tags             []string  `json:"tags"`
	OpenRoles        []string  `json:"open_roles"`
	MaxCollaborators int       `json:"max_collaborators"`
	ImageURL         *string   `json:"image_url,omitempty"`
	Views            int64     `json:"views"`
	Likes            int64     `json:"likes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AcceptsInvestment reports whether the project can currently receive money.
func (p *Project) AcceptsInvestment() bool {
	return p.Status == ProjectStatusActive
}

// CreateProjectPayload defines the structure for creating a new project.
type CreateProjectPayload struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Sector           string   `json:"sector"`
	Industry         string   `json:"industry"`
	FundingGoal      int64    `json:"funding_goal"`
	Tags             []string `json:"tags,omitempty"`
	OpenRoles        []string `json:"open_roles,omitempty"`
	MaxCollaborators int      `json:"max_collaborators,omitempty"`
	ImageURL         *string  `json:"image_url,omitempty"`
}

// UpdateProjectPayload carries the mutable project fields. Funding fields are
// deliberately absent; they belong to the recorder.
type UpdateProjectPayload struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Sector      *string  `json:"sector,omitempty"`
	Industry    *string  `json:"industry,omitempty"`
	FundingGoal *int64   `json:"funding_goal,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	OpenRoles   []string `json:"open_roles,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

// ProjectListOptions controls filtering and keyset pagination for project
// discovery queries.
type ProjectListOptions struct {
	Sector         string
	Status         string
	Search         string // title prefix match
	FundingGoalMin *int64
	FundingGoalMax *int64
	Limit          int
	Cursor         *ProjectCursor
}

// ProjectCursor marks the last row of the previous page.
type ProjectCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

// ProjectCollaborator is one member of a project's team.
type ProjectCollaborator struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// FounderStats is the rollup shown on a founder's dashboard.
type FounderStats struct {
	ActiveProjects     int   `json:"active_projects"`
	TotalFunding       int64 `json:"total_funding"`
	TotalFundingGoal   int64 `json:"total_funding_goal"`
	TotalCollaborators int   `json:"total_collaborators"`
	PendingRequests    int   `json:"pending_requests"`
	TotalViews         int64 `json:"total_views"`
}
