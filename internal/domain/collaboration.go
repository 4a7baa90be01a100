package domain

import (
	"time"

	"github.com/google/uuid"
)

// Collaboration request statuses. Requests move pending -> accepted or
// pending -> rejected exactly once; there is no transition out of a terminal
// state.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// Decision values accepted by the workflow.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// CollaborationRequest is a candidate's application to join a project's team.
// At most one pending request may exist per (project, candidate) pair.
type CollaborationRequest struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Role        string    `json:"role"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPending reports whether the request can still be decided.
func (r *CollaborationRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// SubmitRequestPayload is the DTO for submitting a collaboration request.
type SubmitRequestPayload struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// DecideRequestPayload is the DTO for the owner's decision on a request.
type DecideRequestPayload struct {
	Decision string `json:"decision"` // "accept" or "reject"
}

// RequestStatusCounts holds request counts by status for analytics.
type RequestStatusCounts struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}
