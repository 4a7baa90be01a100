package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
)

type collaborationRepoStub struct {
	store.Repository

	project       *domain.Project
	request       *domain.CollaborationRequest
	collaborators map[uuid.UUID]bool
	pendingPairs  map[string]bool

	acceptCalled bool
	rejectCalled bool
}

func newCollaborationRepoStub(project *domain.Project) *collaborationRepoStub {
	return &collaborationRepoStub{
		project:       project,
		collaborators: make(map[uuid.UUID]bool),
		pendingPairs:  make(map[string]bool),
	}
}

func (s *collaborationRepoStub) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	if s.project == nil || s.project.ID != projectID {
		return nil, store.ErrProjectNotFound
	}
	return s.project, nil
}

func (s *collaborationRepoStub) IsCollaborator(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	return s.collaborators[userID], nil
}

func (s *collaborationRepoStub) CreateCollaborationRequest(ctx context.Context, req *domain.CollaborationRequest) error {
	key := req.ProjectID.String() + ":" + req.CandidateID.String()
	if s.pendingPairs[key] {
		return store.ErrPendingRequestExists
	}
	s.pendingPairs[key] = true
	s.request = req
	return nil
}

func (s *collaborationRepoStub) GetCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error) {
	if s.request == nil || s.request.ID != requestID {
		return nil, store.ErrRequestNotFound
	}
	return s.request, nil
}

func (s *collaborationRepoStub) AcceptCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error) {
	s.acceptCalled = true
	if s.request == nil || s.request.ID != requestID {
		return nil, store.ErrRequestNotFound
	}
	if !s.request.IsPending() {
		return nil, store.ErrRequestNotPending
	}
	if len(s.collaborators) >= s.project.MaxCollaborators {
		return nil, store.ErrProjectFull
	}
	s.request.Status = domain.RequestStatusAccepted
	s.collaborators[s.request.CandidateID] = true
	s.clearPending(s.request)
	return s.request, nil
}

func (s *collaborationRepoStub) RejectCollaborationRequest(ctx context.Context, requestID uuid.UUID) (*domain.CollaborationRequest, error) {
	s.rejectCalled = true
	if s.request == nil || s.request.ID != requestID {
		return nil, store.ErrRequestNotFound
	}
	if !s.request.IsPending() {
		return nil, store.ErrRequestNotPending
	}
	s.request.Status = domain.RequestStatusRejected
	s.clearPending(s.request)
	return s.request, nil
}

// clearPending mirrors the partial unique index: only pending rows block a
// new request for the pair.
func (s *collaborationRepoStub) clearPending(req *domain.CollaborationRequest) {
	delete(s.pendingPairs, req.ProjectID.String()+":"+req.CandidateID.String())
}

func collaborationProject(founderID uuid.UUID) *domain.Project {
	return &domain.Project{
		ID:               uuid.New(),
		FounderID:        founderID,
		Title:            "Urban Farming Kits",
		Sector:           "AgTech",
		Status:           domain.ProjectStatusActive,
		MaxCollaborators: 2,
	}
}

func TestSubmitRequest_RejectsOwnProject(t *testing.T) {
	founderID := uuid.New()
	repo := newCollaborationRepoStub(collaborationProject(founderID))
	svc := NewService(repo, nil, nil, Options{})

	_, err := svc.SubmitRequest(context.Background(), repo.project.ID, founderID, domain.SubmitRequestPayload{Role: "engineer"})
	if !errors.Is(err, ErrOwnProject) {
		t.Fatalf("expected ErrOwnProject, got %v", err)
	}
}

func TestSubmitRequest_RejectsExistingCollaborator(t *testing.T) {
	repo := newCollaborationRepoStub(collaborationProject(uuid.New()))
	candidateID := uuid.New()
	repo.collaborators[candidateID] = true
	svc := NewService(repo, nil, nil, Options{})

	_, err := svc.SubmitRequest(context.Background(), repo.project.ID, candidateID, domain.SubmitRequestPayload{Role: "designer"})
	if !errors.Is(err, store.ErrAlreadyCollaborator) {
		t.Fatalf("expected ErrAlreadyCollaborator, got %v", err)
	}
}

func TestSubmitRequest_SinglePendingPerPair(t *testing.T) {
	repo := newCollaborationRepoStub(collaborationProject(uuid.New()))
	candidateID := uuid.New()
	svc := NewService(repo, nil, nil, Options{})

	first, err := svc.SubmitRequest(context.Background(), repo.project.ID, candidateID, domain.SubmitRequestPayload{Role: "engineer"})
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if first.Status != domain.RequestStatusPending {
		t.Fatalf("expected pending status, got %s", first.Status)
	}

	_, err = svc.SubmitRequest(context.Background(), repo.project.ID, candidateID, domain.SubmitRequestPayload{Role: "engineer"})
	if !errors.Is(err, store.ErrPendingRequestExists) {
		t.Fatalf("expected ErrPendingRequestExists, got %v", err)
	}
}

func TestSubmitRequest_AllowedAgainAfterDecision(t *testing.T) {
	founderID := uuid.New()
	repo := newCollaborationRepoStub(collaborationProject(founderID))
	candidateID := uuid.New()
	svc := NewService(repo, nil, nil, Options{})

	req, err := svc.SubmitRequest(context.Background(), repo.project.ID, candidateID, domain.SubmitRequestPayload{Role: "engineer"})
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.DecideRequest(context.Background(), req.ID, founderID, domain.DecisionReject); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if _, err := svc.SubmitRequest(context.Background(), repo.project.ID, candidateID, domain.SubmitRequestPayload{Role: "engineer"}); err != nil {
		t.Fatalf("expected re-application after rejection to succeed, got %v", err)
	}
}

func TestSubmitRequest_RequiresRole(t *testing.T) {
	repo := newCollaborationRepoStub(collaborationProject(uuid.New()))
	svc := NewService(repo, nil, nil, Options{})

	_, err := svc.SubmitRequest(context.Background(), repo.project.ID, uuid.New(), domain.SubmitRequestPayload{Role: "  "})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestDecideRequest_OnlyOwnerMayDecide(t *testing.T) {
	founderID := uuid.New()
	repo := newCollaborationRepoStub(collaborationProject(founderID))
	svc := NewService(repo, nil, nil, Options{})

	req, err := svc.SubmitRequest(context.Background(), repo.project.ID, uuid.New(), domain.SubmitRequestPayload{Role: "engineer"})
	if err != nil {
		t.Fatalf("request setup failed: %v", err)
	}

	_, err = svc.DecideRequest(context.Background(), req.ID, uuid.New(), domain.DecisionAccept)
	if !errors.Is(err, ErrNotProjectOwner) {
		t.Fatalf("expected ErrNotProjectOwner, got %v", err)
	}
	if repo.acceptCalled {
		t.Fatal("expected no store decision call for unauthorized decider")
	}
}

func TestDecideRequest_RejectsUnknownDecision(t *testing.T) {
	repo := newCollaborationRepoStub(collaborationProject(uuid.New()))
	svc := NewService(repo, nil, nil, Options{})

	_, err := svc.DecideRequest(context.Background(), uuid.New(), uuid.New(), "maybe")
	if !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestDecideRequest_AcceptAppendsCollaborator(t *testing.T) {
	founderID := uuid.New()
	repo := newCollaborationRepoStub(collaborationProject(founderID))
	candidateID := uuid.New()
	svc := NewService(repo, nil, nil, Options{})

	req, err := svc.SubmitRequest(context.Background(), repo.project.ID, candidateID, domain.SubmitRequestPayload{Role: "engineer"})
	if err != nil {
		t.Fatalf("request setup failed: %v", err)
	}

	decided, err := svc.DecideRequest(context.Background(), req.ID, founderID, domain.DecisionAccept)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if decided.Status != domain.RequestStatusAccepted {
		t.Fatalf("expected accepted status, got %s", decided.Status)
	}
	if !repo.collaborators[candidateID] {
		t.Fatal("expected candidate appended to collaborators")
	}
}

func TestDecideRequest_AlreadyDecidedIsConflict(t *testing.T) {
	founderID := uuid.New()
	repo := newCollaborationRepoStub(collaborationProject(founderID))
	svc := NewService(repo, nil, nil, Options{})

	req, err := svc.SubmitRequest(context.Background(), repo.project.ID, uuid.New(), domain.SubmitRequestPayload{Role: "engineer"})
	if err != nil {
		t.Fatalf("request setup failed: %v", err)
	}
	if _, err := svc.DecideRequest(context.Background(), req.ID, founderID, domain.DecisionReject); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	_, err = svc.DecideRequest(context.Background(), req.ID, founderID, domain.DecisionAccept)
	if !errors.Is(err, store.ErrRequestNotPending) {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}
	if repo.collaborators[req.CandidateID] {
		t.Fatal("expected no collaborator appended after terminal decision")
	}
}

func TestDecideRequest_FullProjectRefusesAccept(t *testing.T) {
	founderID := uuid.New()
	project := collaborationProject(founderID)
	project.MaxCollaborators = 1
	repo := newCollaborationRepoStub(project)
	repo.collaborators[uuid.New()] = true
	svc := NewService(repo, nil, nil, Options{})

	req, err := svc.SubmitRequest(context.Background(), project.ID, uuid.New(), domain.SubmitRequestPayload{Role: "engineer"})
	if err != nil {
		t.Fatalf("request setup failed: %v", err)
	}

	_, err = svc.DecideRequest(context.Background(), req.ID, founderID, domain.DecisionAccept)
	if !errors.Is(err, store.ErrProjectFull) {
		t.Fatalf("expected ErrProjectFull, got %v", err)
	}
	if req.Status != domain.RequestStatusPending {
		t.Fatalf("expected request still pending after refused accept, got %s", req.Status)
	}
}
