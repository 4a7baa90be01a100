/**
 * @description
 * Collaboration-request workflow: candidates apply to join a project's team,
 * the project owner accepts or rejects. Acceptance is atomic in the store
 * layer so a request is never accepted without its collaborator row, and a
 * full team refuses further acceptances.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
)

// SubmitRequest files a pending collaboration request from the candidate.
// A founder cannot apply to their own project, an existing collaborator
// cannot re-apply and at most one pending request per (project, candidate)
// pair may exist.
func (s *Service) SubmitRequest(ctx context.Context, projectID, candidateID uuid.UUID, payload domain.SubmitRequestPayload) (*domain.CollaborationRequest, error) {
	if strings.TrimSpace(payload.Role) == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingFields)
	}

	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.FounderID == candidateID {
		return nil, ErrOwnProject
	}
	if project.Status == domain.ProjectStatusArchived {
		return nil, store.ErrProjectNotActive
	}

	member, err := s.repo.IsCollaborator(ctx, projectID, candidateID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, store.ErrAlreadyCollaborator
	}

	req := &domain.CollaborationRequest{
		ID:          uuid.New(),
		ProjectID:   projectID,
		CandidateID: candidateID,
		Role:        strings.TrimSpace(payload.Role),
		Message:     payload.Message,
		Status:      domain.RequestStatusPending,
	}
	if err := s.repo.CreateCollaborationRequest(ctx, req); err != nil {
		return nil, err
	}

	log.Printf("level=info component=collaboration op=submit request_id=%s project_id=%s candidate_id=%s role=%s", req.ID, projectID, candidateID, req.Role)
	return req, nil
}

// DecideRequest applies the owner's decision to a pending request. Accepting
// flips the status and appends the collaborator row in one store transaction;
// rejecting only flips the status. Either way the request leaves the pending
// state exactly once.
func (s *Service) DecideRequest(ctx context.Context, requestID, deciderID uuid.UUID, decision string) (*domain.CollaborationRequest, error) {
	if decision != domain.DecisionAccept && decision != domain.DecisionReject {
		return nil, ErrInvalidDecision
	}

	req, err := s.repo.GetCollaborationRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	project, err := s.repo.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.FounderID != deciderID {
		return nil, ErrNotProjectOwner
	}
	if !req.IsPending() {
		return nil, store.ErrRequestNotPending
	}

	var decided *domain.CollaborationRequest
	if decision == domain.DecisionAccept {
		decided, err = s.repo.AcceptCollaborationRequest(ctx, requestID)
	} else {
		decided, err = s.repo.RejectCollaborationRequest(ctx, requestID)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=collaboration op=decide request_id=%s project_id=%s decision=%s", requestID, req.ProjectID, decision)
	return decided, nil
}

// ProjectRequests lists all requests against a project, owner only.
func (s *Service) ProjectRequests(ctx context.Context, projectID, actorID uuid.UUID) ([]domain.CollaborationRequest, error) {
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.FounderID != actorID {
		return nil, ErrNotProjectOwner
	}
	return s.repo.ListRequestsByProject(ctx, projectID)
}

// MyRequests lists the candidate's own requests across all projects.
func (s *Service) MyRequests(ctx context.Context, candidateID uuid.UUID) ([]domain.CollaborationRequest, error) {
	return s.repo.ListRequestsByCandidate(ctx, candidateID)
}

// ProjectTeam lists the accepted collaborators on a project.
func (s *Service) ProjectTeam(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectCollaborator, error) {
	if _, err := s.repo.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListCollaborators(ctx, projectID)
}
