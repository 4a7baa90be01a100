/**
 * @description
 * HTTP handlers for the collaboration request workflow: candidates apply to
 * join a project, the owner lists and decides requests, anyone can view a
 * project's accepted team.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/app"
	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
)

// SubmitRequestHandler handles POST /projects/{projectID}/requests.
func (h *FundingHandlers) SubmitRequestHandler(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	var payload domain.SubmitRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.service.SubmitRequest(r.Context(), projectID, candidateID, payload)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProjectNotFound):
			h.writeError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, app.ErrMissingFields):
			h.writeError(w, http.StatusBadRequest, "Role is required")
		case errors.Is(err, app.ErrOwnProject):
			h.writeError(w, http.StatusConflict, "You cannot apply to your own project")
		case errors.Is(err, store.ErrAlreadyCollaborator):
			h.writeError(w, http.StatusConflict, "You are already a collaborator on this project")
		case errors.Is(err, store.ErrPendingRequestExists):
			h.writeError(w, http.StatusConflict, "You already have a pending request for this project")
		case errors.Is(err, store.ErrProjectNotActive):
			h.writeError(w, http.StatusConflict, "Project is not accepting applications")
		default:
			log.Printf("level=error component=api endpoint=submit_request project_id=%s candidate_id=%s err=%v", projectID, candidateID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not submit request")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, req)
}

// ProjectRequestsHandler handles GET /projects/{projectID}/requests, owner only.
func (h *FundingHandlers) ProjectRequestsHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	requests, err := h.service.ProjectRequests(r.Context(), projectID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProjectNotFound):
			h.writeError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, app.ErrNotProjectOwner):
			h.writeError(w, http.StatusForbidden, "Only the project owner may view its requests")
		default:
			log.Printf("level=error component=api endpoint=project_requests project_id=%s err=%v", projectID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not list requests")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, requests)
}

// MyRequestsHandler handles GET /requests/mine.
func (h *FundingHandlers) MyRequestsHandler(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	requests, err := h.service.MyRequests(r.Context(), candidateID)
	if err != nil {
		log.Printf("level=error component=api endpoint=my_requests candidate_id=%s err=%v", candidateID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not list requests")
		return
	}
	h.writeJSON(w, http.StatusOK, requests)
}

// DecideRequestHandler handles PUT /requests/{requestID}/decision.
func (h *FundingHandlers) DecideRequestHandler(w http.ResponseWriter, r *http.Request) {
	deciderID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var payload domain.DecideRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	decided, err := h.service.DecideRequest(r.Context(), requestID, deciderID, payload.Decision)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidDecision):
			h.writeError(w, http.StatusBadRequest, "Decision must be accept or reject")
		case errors.Is(err, store.ErrRequestNotFound):
			h.writeError(w, http.StatusNotFound, "Request not found")
		case errors.Is(err, app.ErrNotProjectOwner):
			h.writeError(w, http.StatusForbidden, "Only the project owner may decide requests")
		case errors.Is(err, store.ErrRequestNotPending):
			h.writeError(w, http.StatusConflict, "Request has already been decided")
		case errors.Is(err, store.ErrProjectFull):
			h.writeError(w, http.StatusConflict, "Project has no open collaborator slots")
		case errors.Is(err, store.ErrAlreadyCollaborator):
			h.writeError(w, http.StatusConflict, "Candidate is already a collaborator")
		default:
			log.Printf("level=error component=api endpoint=decide_request request_id=%s err=%v", requestID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not decide request")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, decided)
}

// ProjectTeamHandler handles GET /projects/{projectID}/team.
func (h *FundingHandlers) ProjectTeamHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.parseProjectID(w, r)
	if !ok {
		return
	}

	team, err := h.service.ProjectTeam(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			h.writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Printf("level=error component=api endpoint=project_team project_id=%s err=%v", projectID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not list team")
		return
	}
	h.writeJSON(w, http.StatusOK, team)
}
