/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL needed for projects, the investments
 * ledger, investor positions, collaboration requests and the analytics reads.
 *
 * @notes
 * - The recorder path (`RecordInvestment`) and the acceptance path
 *   (`AcceptCollaborationRequest`) run inside a single database transaction;
 *   funding aggregates are bumped with atomic `SET x = x + $n` updates, never
 *   read-modify-write from application memory.
 * - Webhook idempotency rides on the `processed_payment_events` primary key:
 *   claiming an already-claimed payment reference affects zero rows and maps
 *   to ErrDuplicateConfirmation.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
)

const uniqueViolationCode = "23505"

// PostgresRepository is a concrete implementation of the Repository interface
// for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const projectColumns = `id, founder_id, title, description, sector, industry, status,
	funding_goal, funding_raised, tags, open_roles, max_collaborators,
	image_url, views, likes, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.FounderID, &p.Title, &p.Description, &p.Sector, &p.Industry,
		&p.Status, &p.FundingGoal, &p.FundingRaised, &p.Tags, &p.OpenRoles,
		&p.MaxCollaborators, &p.ImageURL, &p.Views, &p.Likes, &p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a new project document.
func (r *PostgresRepository) CreateProject(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (id, founder_id, title, description, sector, industry, status,
			funding_goal, funding_raised, tags, open_roles, max_collaborators, image_url,
			views, likes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, $12, 0, 0, now(), now())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		p.ID, p.FounderID, p.Title, p.Description, p.Sector, p.Industry,
		p.Status, p.FundingGoal, p.Tags, p.OpenRoles, p.MaxCollaborators,
		p.ImageURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetProjectByID retrieves a single project.
func (r *PostgresRepository) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateProject applies a partial update to the project's descriptive fields.
// Funding fields are intentionally not reachable from here.
func (r *PostgresRepository) UpdateProject(ctx context.Context, projectID uuid.UUID, upd domain.UpdateProjectPayload) (*domain.Project, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{projectID}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Sector != nil {
		add("sector", *upd.Sector)
	}
	if upd.Industry != nil {
		add("industry", *upd.Industry)
	}
	if upd.FundingGoal != nil {
		add("funding_goal", *upd.FundingGoal)
	}
	if upd.Tags != nil {
		add("tags", upd.Tags)
	}
	if upd.OpenRoles != nil {
		add("open_roles", upd.OpenRoles)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}

	query := fmt.Sprintf(
		"UPDATE projects SET %s WHERE id = $1 RETURNING %s",
		strings.Join(sets, ", "), projectColumns,
	)
	p, err := scanProject(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateProjectStatus transitions the project's lifecycle status.
func (r *PostgresRepository) UpdateProjectStatus(ctx context.Context, projectID uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET status = $2, updated_at = now() WHERE id = $1`,
		projectID, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ArchiveProject soft-deletes a project. Projects referenced by ledger entries
// are never hard-deleted; archiving is the only removal path.
func (r *PostgresRepository) ArchiveProject(ctx context.Context, projectID uuid.UUID) error {
	return r.UpdateProjectStatus(ctx, projectID, domain.ProjectStatusArchived)
}

// IncrementProjectViews bumps the view counter atomically.
func (r *PostgresRepository) IncrementProjectViews(ctx context.Context, projectID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET views = views + 1 WHERE id = $1`, projectID)
	return err
}

// ListProjects returns a filtered page of projects ordered newest first, with
// a keyset cursor for the next page.
func (r *PostgresRepository) ListProjects(ctx context.Context, opts domain.ProjectListOptions) ([]domain.Project, *domain.ProjectCursor, error) {
	conds := []string{"1=1"}
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.Sector != "" {
		conds = append(conds, "sector = "+arg(opts.Sector))
	}
	if opts.Status != "" {
		conds = append(conds, "status = "+arg(opts.Status))
	}
	if opts.Search != "" {
		conds = append(conds, "title ILIKE "+arg(opts.Search+"%"))
	}
	if opts.FundingGoalMin != nil {
		conds = append(conds, "funding_goal >= "+arg(*opts.FundingGoalMin))
	}
	if opts.FundingGoalMax != nil {
		conds = append(conds, "funding_goal <= "+arg(*opts.FundingGoalMax))
	}
	if opts.Cursor != nil {
		conds = append(conds, fmt.Sprintf("(created_at, id) < (%s, %s)",
			arg(opts.Cursor.CreatedAt), arg(opts.Cursor.ID)))
	}

	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 12
	}

	query := fmt.Sprintf(
		`SELECT %s FROM projects WHERE %s ORDER BY created_at DESC, id DESC LIMIT %s`,
		projectColumns, strings.Join(conds, " AND "), arg(limit),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.ProjectCursor
	if len(projects) == limit {
		last := projects[len(projects)-1]
		next = &domain.ProjectCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return projects, next, nil
}

// FindProjectsByFounder returns all projects owned by the founder, newest first.
func (r *PostgresRepository) FindProjectsByFounder(ctx context.Context, founderID uuid.UUID) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE founder_id = $1 ORDER BY created_at DESC`
	return r.queryProjects(ctx, query, founderID)
}

// FindProjectsByInvestor returns the projects an investor has backed, via the
// investor position index.
func (r *PostgresRepository) FindProjectsByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Project, error) {
	query := `
		SELECT ` + projectColumns + ` FROM projects
		WHERE id IN (SELECT project_id FROM project_investors WHERE investor_id = $1)
		ORDER BY created_at DESC
	`
	return r.queryProjects(ctx, query, investorID)
}

func (r *PostgresRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ListCollaborators returns a project's team members.
func (r *PostgresRepository) ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectCollaborator, error) {
	query := `
		SELECT project_id, user_id, role, joined_at
		FROM project_collaborators WHERE project_id = $1 ORDER BY joined_at
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.ProjectCollaborator
	for rows.Next() {
		var m domain.ProjectCollaborator
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// IsCollaborator reports whether the user is on the project's team.
func (r *PostgresRepository) IsCollaborator(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM project_collaborators WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&exists)
	return exists, err
}

// RecordInvestment performs the atomic recording of a confirmed payment:
// claim the payment reference, append the ledger entry, bump the project's
// funding_raised and upsert the investor position — all or nothing.
func (r *PostgresRepository) RecordInvestment(ctx context.Context, params RecordInvestmentParams) (*domain.Investment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Lock the project row and validate it can receive money. The lock
	// serializes concurrent confirmations for the same project so position
	// upserts cannot lose updates.
	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM projects WHERE id = $1 FOR UPDATE`,
		params.ProjectID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to lock project: %w", err)
	}
	if status != domain.ProjectStatusActive {
		return nil, ErrProjectNotActive
	}

	investmentID := uuid.New()

	// 2. Claim the payment reference. A reference that was already processed
	// claims zero rows; the whole operation becomes a no-op.
	tag, err := tx.Exec(ctx, `
		INSERT INTO processed_payment_events (payment_reference, investment_id, processed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (payment_reference) DO NOTHING
	`, params.PaymentReference, investmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim payment reference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrDuplicateConfirmation
	}

	// 3. Append the immutable ledger entry.
	inv := &domain.Investment{
		ID:               investmentID,
		ProjectID:        params.ProjectID,
		InvestorID:       params.InvestorID,
		Amount:           params.Amount,
		PaymentReference: params.PaymentReference,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO investments (id, project_id, investor_id, amount, payment_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at
	`, inv.ID, inv.ProjectID, inv.InvestorID, inv.Amount, inv.PaymentReference).Scan(&inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append investment entry: %w", err)
	}

	// 4. Bump the denormalized project aggregate.
	_, err = tx.Exec(ctx, `
		UPDATE projects SET funding_raised = funding_raised + $2, updated_at = now()
		WHERE id = $1
	`, params.ProjectID, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to update funding aggregate: %w", err)
	}

	// 5. Upsert the per-investor position (also the reverse-lookup index).
	_, err = tx.Exec(ctx, `
		INSERT INTO project_investors (project_id, investor_id, amount, invested_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (project_id, investor_id)
		DO UPDATE SET amount = project_investors.amount + EXCLUDED.amount, updated_at = now()
	`, params.ProjectID, params.InvestorID, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert investor position: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit investment: %w", err)
	}
	return inv, nil
}

// ListInvestments returns ledger entries matching the filter, oldest first.
func (r *PostgresRepository) ListInvestments(ctx context.Context, opts domain.InvestmentListOptions) ([]domain.Investment, error) {
	conds := []string{"1=1"}
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.ProjectID != nil {
		conds = append(conds, "project_id = "+arg(*opts.ProjectID))
	}
	if opts.InvestorID != nil {
		conds = append(conds, "investor_id = "+arg(*opts.InvestorID))
	}
	if opts.Since != nil {
		conds = append(conds, "created_at >= "+arg(*opts.Since))
	}

	query := fmt.Sprintf(`
		SELECT id, project_id, investor_id, amount, payment_reference, created_at
		FROM investments WHERE %s ORDER BY created_at ASC
	`, strings.Join(conds, " AND "))
	if opts.Limit > 0 {
		query += " LIMIT " + arg(opts.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Investment
	for rows.Next() {
		var e domain.Investment
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.InvestorID, &e.Amount, &e.PaymentReference, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InvestorPositions returns an investor's cumulative positions across projects.
func (r *PostgresRepository) InvestorPositions(ctx context.Context, investorID uuid.UUID) ([]domain.InvestorPosition, error) {
	return r.queryPositions(ctx,
		`SELECT project_id, investor_id, amount, invested_at, updated_at
		 FROM project_investors WHERE investor_id = $1`, investorID)
}

// ProjectPositions returns the per-investor aggregate for one project.
func (r *PostgresRepository) ProjectPositions(ctx context.Context, projectID uuid.UUID) ([]domain.InvestorPosition, error) {
	return r.queryPositions(ctx,
		`SELECT project_id, investor_id, amount, invested_at, updated_at
		 FROM project_investors WHERE project_id = $1`, projectID)
}

func (r *PostgresRepository) queryPositions(ctx context.Context, query string, arg interface{}) ([]domain.InvestorPosition, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []domain.InvestorPosition
	for rows.Next() {
		var p domain.InvestorPosition
		if err := rows.Scan(&p.ProjectID, &p.InvestorID, &p.Amount, &p.InvestedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// FilterUnprocessedPaymentReferences returns the subset of refs that have no
// processed marker yet. Used by the reconciliation job to find confirmed
// payments with no ledger trace.
func (r *PostgresRepository) FilterUnprocessedPaymentReferences(ctx context.Context, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT ref FROM unnest($1::text[]) AS ref
		WHERE ref NOT IN (SELECT payment_reference FROM processed_payment_events)
	`, refs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		missing = append(missing, ref)
	}
	return missing, rows.Err()
}

// CreateCollaborationRequest inserts a new pending request. The partial unique
// index on (project_id, candidate_id) WHERE status = 'pending' enforces the
// single-pending invariant under concurrency.
func (r *PostgresRepository) CreateCollaborationRequest(ctx context.Context, req *domain.CollaborationRequest) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO collaboration_requests (id, project_id, candidate_id, role, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at
	`, req.ID, req.ProjectID, req.CandidateID, req.Role, req.Message, req.Status).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrPendingRequestExists
		}
		return err
	}
	return nil
}

// GetCollaborationRequest retrieves a request by id.
func (r *PostgresRepository) GetCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error) {
	req, err := scanRequest(r.db.QueryRow(ctx, requestSelect+` WHERE id = $1`, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

const requestSelect = `
	SELECT id, project_id, candidate_id, role, message, status, created_at, updated_at
	FROM collaboration_requests`

func scanRequest(row pgx.Row) (*domain.CollaborationRequest, error) {
	var req domain.CollaborationRequest
	err := row.Scan(&req.ID, &req.ProjectID, &req.CandidateID, &req.Role,
		&req.Message, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRequestsByProject returns a project's requests, newest first.
func (r *PostgresRepository) ListRequestsByProject(ctx context.Context, projectID uuid.UUID) ([]domain.CollaborationRequest, error) {
	return r.queryRequests(ctx, requestSelect+` WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
}

// ListRequestsByCandidate returns a candidate's requests, newest first.
func (r *PostgresRepository) ListRequestsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]domain.CollaborationRequest, error) {
	return r.queryRequests(ctx, requestSelect+` WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
}

func (r *PostgresRepository) queryRequests(ctx context.Context, query string, arg interface{}) ([]domain.CollaborationRequest, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.CollaborationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// AcceptCollaborationRequest performs the atomic acceptance: the status flip
// and the collaborator append happen in one transaction or not at all.
func (r *PostgresRepository) AcceptCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Lock the request and validate it is still pending.
	req, err := scanRequest(tx.QueryRow(ctx, requestSelect+` WHERE id = $1 FOR UPDATE`, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}
	if req.Status != domain.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	// 2. Lock the project row and check team capacity.
	var maxCollaborators int
	err = tx.QueryRow(ctx,
		`SELECT max_collaborators FROM projects WHERE id = $1 FOR UPDATE`,
		req.ProjectID,
	).Scan(&maxCollaborators)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to lock project: %w", err)
	}

	var teamSize int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM project_collaborators WHERE project_id = $1`,
		req.ProjectID,
	).Scan(&teamSize)
	if err != nil {
		return nil, fmt.Errorf("failed to count collaborators: %w", err)
	}
	if maxCollaborators > 0 && teamSize >= maxCollaborators {
		return nil, ErrProjectFull
	}

	// 3. Append the collaborator with the requested role.
	_, err = tx.Exec(ctx, `
		INSERT INTO project_collaborators (project_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, now())
	`, req.ProjectID, req.CandidateID, req.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrAlreadyCollaborator
		}
		return nil, fmt.Errorf("failed to append collaborator: %w", err)
	}

	// 4. Flip the request status.
	err = tx.QueryRow(ctx, `
		UPDATE collaboration_requests SET status = $2, updated_at = now()
		WHERE id = $1 RETURNING updated_at
	`, requestID, domain.RequestStatusAccepted).Scan(&req.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}
	req.Status = domain.RequestStatusAccepted

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit acceptance: %w", err)
	}
	return req, nil
}

// RejectCollaborationRequest flips a pending request to rejected.
func (r *PostgresRepository) RejectCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error) {
	req, err := scanRequest(r.db.QueryRow(ctx, `
		UPDATE collaboration_requests SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING id, project_id, candidate_id, role, message, status, created_at, updated_at
	`, requestID, domain.RequestStatusRejected, domain.RequestStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish missing from already-decided for the caller.
			if _, getErr := r.GetCollaborationRequest(ctx, requestID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrRequestNotPending
		}
		return nil, err
	}
	return req, nil
}

// DailyFundingTotals sums ledger amounts per UTC calendar day since the given
// time. Days with no entries are absent; callers zero-fill.
func (r *PostgresRepository) DailyFundingTotals(ctx context.Context, since time.Time) ([]DailyTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, SUM(amount)
		FROM investments
		WHERE created_at >= $1
		GROUP BY day ORDER BY day ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.Day, &t.Amount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// SectorTotalsForInvestor sums the investor's positions by project sector.
func (r *PostgresRepository) SectorTotalsForInvestor(ctx context.Context, investorID uuid.UUID) ([]SectorTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.sector, SUM(pi.amount)
		FROM project_investors pi
		JOIN projects p ON p.id = pi.project_id
		WHERE pi.investor_id = $1 AND pi.amount > 0
		GROUP BY p.sector
	`, investorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []SectorTotal
	for rows.Next() {
		var t SectorTotal
		if err := rows.Scan(&t.Sector, &t.Amount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// SectorCounts returns how many projects exist per sector.
func (r *PostgresRepository) SectorCounts(ctx context.Context) ([]SectorCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT sector, COUNT(*) FROM projects GROUP BY sector ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []SectorCount
	for rows.Next() {
		var c SectorCount
		if err := rows.Scan(&c.Sector, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// PlatformSummaryCounts backs the platform-wide analytics summary.
func (r *PostgresRepository) PlatformSummaryCounts(ctx context.Context) (*SummaryCounts, error) {
	var s SummaryCounts
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COALESCE(SUM(funding_raised), 0) FROM projects),
			(SELECT COUNT(DISTINCT investor_id) FROM project_investors),
			(SELECT COUNT(*) FROM collaboration_requests WHERE status = 'pending')
	`).Scan(&s.TotalProjects, &s.TotalFundingRaised, &s.TotalInvestors, &s.PendingRequests)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RequestStatusCounts returns request counts grouped by status.
func (r *PostgresRepository) RequestStatusCounts(ctx context.Context) (*domain.RequestStatusCounts, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM collaboration_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts domain.RequestStatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		switch status {
		case domain.RequestStatusPending:
			counts.Pending = n
		case domain.RequestStatusAccepted:
			counts.Accepted = n
		case domain.RequestStatusRejected:
			counts.Rejected = n
		}
	}
	return &counts, rows.Err()
}

// RequestTimesForFounder returns creation timestamps of requests against the
// founder's projects since the given time. The trend bucketing happens in the
// application layer where it can be unit tested.
func (r *PostgresRepository) RequestTimesForFounder(ctx context.Context, founderID uuid.UUID, since time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cr.created_at
		FROM collaboration_requests cr
		JOIN projects p ON p.id = cr.project_id
		WHERE p.founder_id = $1 AND cr.created_at >= $2
	`, founderID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
