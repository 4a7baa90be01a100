/**
 * @description
 * This file contains the HTTP handlers for project management and investment
 * intents. Handlers parse incoming requests, call the application service and
 * write the HTTP response. They act as the bridge between the web layer and
 * the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/app"
	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
)

// FundingHandlers holds the application service that handlers will use.
type FundingHandlers struct {
	service       *app.Service
	webhookSecret string
}

// NewFundingHandlers creates a new instance of FundingHandlers.
func NewFundingHandlers(service *app.Service, webhookSecret string) *FundingHandlers {
	return &FundingHandlers{service: service, webhookSecret: webhookSecret}
}

// projectListResponse wraps a discovery page with its continuation cursor.
type projectListResponse struct {
	Projects   []domain.Project `json:"projects"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

// CreateProjectHandler handles POST /projects.
func (h *FundingHandlers) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	founderID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var payload domain.CreateProjectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.service.CreateProject(r.Context(), founderID, payload)
	if err != nil {
		if errors.Is(err, app.ErrMissingFields) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=create_project founder_id=%s err=%v", founderID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not create project")
		return
	}

	h.writeJSON(w, http.StatusCreated, project)
}

// GetProjectHandler handles GET /projects/{projectID}.
func (h *FundingHandlers) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.GetProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			h.writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_project project_id=%s err=%v", projectID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not fetch project")
		return
	}

	h.writeJSON(w, http.StatusOK, project)
}

// UpdateProjectHandler handles PATCH /projects/{projectID}.
func (h *FundingHandlers) UpdateProjectHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	var upd domain.UpdateProjectPayload
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.service.UpdateProject(r.Context(), projectID, actorID, upd)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProjectNotFound):
			h.writeError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, app.ErrNotProjectOwner):
			h.writeError(w, http.StatusForbidden, "Only the project owner may update it")
		default:
			log.Printf("level=error component=api endpoint=update_project project_id=%s err=%v", projectID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not update project")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, project)
}

// ChangeProjectStatusHandler handles PUT /projects/{projectID}/status.
func (h *FundingHandlers) ChangeProjectStatusHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ChangeProjectStatus(r.Context(), projectID, actorID, req.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrProjectNotFound):
			h.writeError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, app.ErrNotProjectOwner):
			h.writeError(w, http.StatusForbidden, "Only the project owner may change its status")
		case errors.Is(err, app.ErrInvalidStatusTransition):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("level=error component=api endpoint=change_status project_id=%s err=%v", projectID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not change project status")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// ListProjectsHandler handles GET /projects with discovery filters and keyset
// pagination. The cursor query parameter is the base64 JSON cursor returned by
// the previous page.
func (h *FundingHandlers) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := domain.ProjectListOptions{
		Sector: q.Get("sector"),
		Status: q.Get("status"),
		Search: q.Get("search"),
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		opts.Limit = limit
	}
	if raw := q.Get("goal_min"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid goal_min")
			return
		}
		opts.FundingGoalMin = &v
	}
	if raw := q.Get("goal_max"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid goal_max")
			return
		}
		opts.FundingGoalMax = &v
	}
	if raw := q.Get("cursor"); raw != "" {
		cursor, err := decodeCursor(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}
		opts.Cursor = cursor
	}

	projects, next, err := h.service.ListProjects(r.Context(), opts)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_projects err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Could not list projects")
		return
	}

	resp := projectListResponse{Projects: projects}
	if next != nil {
		encoded := encodeCursor(next)
		resp.NextCursor = &encoded
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// MyProjectsHandler handles GET /founders/me/projects.
func (h *FundingHandlers) MyProjectsHandler(w http.ResponseWriter, r *http.Request) {
	founderID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	projects, err := h.service.FounderProjects(r.Context(), founderID)
	if err != nil {
		log.Printf("level=error component=api endpoint=my_projects founder_id=%s err=%v", founderID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not list projects")
		return
	}
	h.writeJSON(w, http.StatusOK, projects)
}

// FounderStatsHandler handles GET /founders/me/stats.
func (h *FundingHandlers) FounderStatsHandler(w http.ResponseWriter, r *http.Request) {
	founderID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	stats, err := h.service.FounderStats(r.Context(), founderID)
	if err != nil {
		log.Printf("level=error component=api endpoint=founder_stats founder_id=%s err=%v", founderID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute stats")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// PortfolioHandler handles GET /investors/me/portfolio.
func (h *FundingHandlers) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	investorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	projects, positions, err := h.service.InvestorPortfolio(r.Context(), investorID)
	if err != nil {
		log.Printf("level=error component=api endpoint=portfolio investor_id=%s err=%v", investorID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not load portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects":  projects,
		"positions": positions,
	})
}

// InvestorStatsHandler handles GET /investors/me/stats.
func (h *FundingHandlers) InvestorStatsHandler(w http.ResponseWriter, r *http.Request) {
	investorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	stats, err := h.service.InvestorStats(r.Context(), investorID)
	if err != nil {
		log.Printf("level=error component=api endpoint=investor_stats investor_id=%s err=%v", investorID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute stats")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// InvestHandler handles POST /projects/{projectID}/invest. It opens a provider
// checkout session; money is only recorded later, when the provider confirms.
func (h *FundingHandlers) InvestHandler(w http.ResponseWriter, r *http.Request) {
	investorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.CreateInvestmentIntent(r.Context(), projectID, investorID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidAmount):
			h.writeError(w, http.StatusBadRequest, "Amount must be greater than zero")
		case errors.Is(err, store.ErrProjectNotFound):
			h.writeError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, store.ErrProjectNotActive):
			h.writeError(w, http.StatusConflict, "Project is not accepting investments")
		case errors.Is(err, app.ErrRateLimited):
			h.writeError(w, http.StatusTooManyRequests, "Too many investment attempts. Please wait a moment.")
		default:
			log.Printf("level=error component=api endpoint=invest project_id=%s investor_id=%s err=%v", projectID, investorID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not create checkout session")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, session)
}

// ProjectInvestmentsHandler handles GET /projects/{projectID}/investments,
// owner only.
func (h *FundingHandlers) ProjectInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.GetProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			h.writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Printf("level=error component=api endpoint=project_investments project_id=%s err=%v", projectID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not fetch project")
		return
	}
	if project.FounderID != actorID {
		h.writeError(w, http.StatusForbidden, "Only the project owner may view its ledger")
		return
	}

	investments, err := h.service.ProjectLedger(r.Context(), projectID)
	if err != nil {
		log.Printf("level=error component=api endpoint=project_investments project_id=%s err=%v", projectID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not list investments")
		return
	}
	h.writeJSON(w, http.StatusOK, investments)
}

func (h *FundingHandlers) parseProjectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "projectID")
	projectID, err := uuid.Parse(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid project ID")
		return uuid.Nil, false
	}
	return projectID, true
}

func encodeCursor(c *domain.ProjectCursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(encoded string) (*domain.ProjectCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, err
	}
	var cursor domain.ProjectCursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// writeJSON is a helper for writing JSON responses.
func (h *FundingHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *FundingHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
