package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
	"github.com/Bi11y4real/Startup-connect/pkg/paymentgateway"
)

// recorderRepoStub mimics the store's atomic recording semantics in memory:
// the payment reference claim, the ledger append and the aggregate increments
// succeed or fail together.
type recorderRepoStub struct {
	store.Repository

	project       *domain.Project
	processedRefs map[string]bool
	ledger        []domain.Investment
	positions     map[string]int64 // projectID:investorID -> amount
	recordCalls   int
}

func newRecorderRepoStub(project *domain.Project) *recorderRepoStub {
	return &recorderRepoStub{
		project:       project,
		processedRefs: make(map[string]bool),
		positions:     make(map[string]int64),
	}
}

func (s *recorderRepoStub) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	if s.project == nil || s.project.ID != projectID {
		return nil, store.ErrProjectNotFound
	}
	copied := *s.project
	return &copied, nil
}

func (s *recorderRepoStub) UpdateProjectStatus(ctx context.Context, projectID uuid.UUID, status string) error {
	if s.project == nil || s.project.ID != projectID {
		return store.ErrProjectNotFound
	}
	s.project.Status = status
	return nil
}

func (s *recorderRepoStub) RecordInvestment(ctx context.Context, params store.RecordInvestmentParams) (*domain.Investment, error) {
	s.recordCalls++
	if s.project == nil || s.project.ID != params.ProjectID {
		return nil, store.ErrProjectNotFound
	}
	if s.project.Status != domain.ProjectStatusActive {
		return nil, store.ErrProjectNotActive
	}
	if s.processedRefs[params.PaymentReference] {
		return nil, store.ErrDuplicateConfirmation
	}

	s.processedRefs[params.PaymentReference] = true
	inv := domain.Investment{
		ID:               uuid.New(),
		ProjectID:        params.ProjectID,
		InvestorID:       params.InvestorID,
		Amount:           params.Amount,
		PaymentReference: params.PaymentReference,
		CreatedAt:        time.Now().UTC(),
	}
	s.ledger = append(s.ledger, inv)
	s.project.FundingRaised += params.Amount
	s.positions[params.ProjectID.String()+":"+params.InvestorID.String()] += params.Amount
	return &inv, nil
}

type publisherStub struct {
	published []string
	fail      bool
}

func (p *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, routingKey)
	return nil
}

func (p *publisherStub) Close() {}

func activeProject() *domain.Project {
	return &domain.Project{
		ID:          uuid.New(),
		FounderID:   uuid.New(),
		Title:       "Solar Micro-Grids",
		Sector:      "Energy",
		Status:      domain.ProjectStatusActive,
		FundingGoal: 100000,
	}
}

func TestRecordInvestment_RejectsNonPositiveAmountWithoutWrites(t *testing.T) {
	repo := newRecorderRepoStub(activeProject())
	svc := NewService(repo, nil, nil, Options{AllowOverfunding: true})

	for _, amount := range []int64{0, -500} {
		_, err := svc.RecordInvestment(context.Background(), repo.project.ID, uuid.New(), amount, "txn_1")
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if repo.recordCalls != 0 {
		t.Fatalf("expected no store calls for invalid amounts, got %d", repo.recordCalls)
	}
	if repo.project.FundingRaised != 0 || len(repo.ledger) != 0 {
		t.Fatal("expected no state change for invalid amounts")
	}
}

func TestRecordInvestment_DuplicateReferenceIsSingleEntry(t *testing.T) {
	repo := newRecorderRepoStub(activeProject())
	pub := &publisherStub{}
	svc := NewService(repo, nil, pub, Options{AllowOverfunding: true})
	investorID := uuid.New()

	if _, err := svc.RecordInvestment(context.Background(), repo.project.ID, investorID, 2500, "txn_dup"); err != nil {
		t.Fatalf("first recording failed: %v", err)
	}
	_, err := svc.RecordInvestment(context.Background(), repo.project.ID, investorID, 2500, "txn_dup")
	if !errors.Is(err, store.ErrDuplicateConfirmation) {
		t.Fatalf("expected ErrDuplicateConfirmation, got %v", err)
	}

	if len(repo.ledger) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(repo.ledger))
	}
	if repo.project.FundingRaised != 2500 {
		t.Fatalf("expected funding_raised=2500, got %d", repo.project.FundingRaised)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
}

func TestRecordInvestment_AggregatesAcrossConfirmations(t *testing.T) {
	repo := newRecorderRepoStub(activeProject())
	svc := NewService(repo, nil, nil, Options{AllowOverfunding: true})
	investorID := uuid.New()

	if _, err := svc.RecordInvestment(context.Background(), repo.project.ID, investorID, 10000, "txn_a"); err != nil {
		t.Fatalf("recording txn_a failed: %v", err)
	}
	if _, err := svc.RecordInvestment(context.Background(), repo.project.ID, investorID, 5000, "txn_b"); err != nil {
		t.Fatalf("recording txn_b failed: %v", err)
	}

	if repo.project.FundingRaised != 15000 {
		t.Fatalf("expected funding_raised=15000, got %d", repo.project.FundingRaised)
	}
	key := repo.project.ID.String() + ":" + investorID.String()
	if repo.positions[key] != 15000 {
		t.Fatalf("expected investor position=15000, got %d", repo.positions[key])
	}
	if len(repo.ledger) != 2 {
		t.Fatalf("expected two ledger entries, got %d", len(repo.ledger))
	}
}

func TestRecordInvestment_PublishFailureDoesNotFailRecording(t *testing.T) {
	repo := newRecorderRepoStub(activeProject())
	pub := &publisherStub{fail: true}
	svc := NewService(repo, nil, pub, Options{AllowOverfunding: true})

	inv, err := svc.RecordInvestment(context.Background(), repo.project.ID, uuid.New(), 100, "txn_pub")
	if err != nil {
		t.Fatalf("expected recording to succeed despite broker failure, got %v", err)
	}
	if inv == nil || inv.Amount != 100 {
		t.Fatal("expected a recorded investment")
	}
}

func TestRecordInvestment_CompletesProjectAtGoalWhenOverfundingDisabled(t *testing.T) {
	project := activeProject()
	project.FundingGoal = 1000
	repo := newRecorderRepoStub(project)
	svc := NewService(repo, nil, nil, Options{AllowOverfunding: false})

	if _, err := svc.RecordInvestment(context.Background(), project.ID, uuid.New(), 1000, "txn_goal"); err != nil {
		t.Fatalf("recording failed: %v", err)
	}
	if repo.project.Status != domain.ProjectStatusCompleted {
		t.Fatalf("expected project completed at goal, got %s", repo.project.Status)
	}
}

func TestRecordInvestment_OverfundingAllowedKeepsProjectActive(t *testing.T) {
	project := activeProject()
	project.FundingGoal = 1000
	repo := newRecorderRepoStub(project)
	svc := NewService(repo, nil, nil, Options{AllowOverfunding: true})

	if _, err := svc.RecordInvestment(context.Background(), project.ID, uuid.New(), 5000, "txn_over"); err != nil {
		t.Fatalf("recording failed: %v", err)
	}
	if repo.project.Status != domain.ProjectStatusActive {
		t.Fatalf("expected project to stay active past goal, got %s", repo.project.Status)
	}
	if repo.project.FundingRaised != 5000 {
		t.Fatalf("expected full confirmed amount recorded, got %d", repo.project.FundingRaised)
	}
}

func TestHandlePaymentConfirmed_IgnoresOtherEventTypes(t *testing.T) {
	repo := newRecorderRepoStub(activeProject())
	svc := NewService(repo, nil, nil, Options{AllowOverfunding: true})

	inv, err := svc.HandlePaymentConfirmed(context.Background(), &paymentgateway.Event{
		ID:   "evt_1",
		Type: "checkout.expired",
	})
	if err != nil {
		t.Fatalf("expected nil error for ignored type, got %v", err)
	}
	if inv != nil {
		t.Fatal("expected no investment for ignored type")
	}
	if repo.recordCalls != 0 {
		t.Fatal("expected no store calls for ignored type")
	}
}

func TestHandlePaymentConfirmed_MissingMetadataIsDropped(t *testing.T) {
	repo := newRecorderRepoStub(activeProject())
	svc := NewService(repo, nil, nil, Options{AllowOverfunding: true})

	tests := []struct {
		name  string
		event paymentgateway.Event
	}{
		{
			name: "bad project id",
			event: paymentgateway.Event{
				Type:          paymentgateway.EventCheckoutCompleted,
				TransactionID: "txn_x",
				Amount:        100,
				Metadata:      paymentgateway.CheckoutMetadata{ProjectID: "not-a-uuid", InvestorID: uuid.NewString()},
			},
		},
		{
			name: "bad investor id",
			event: paymentgateway.Event{
				Type:          paymentgateway.EventCheckoutCompleted,
				TransactionID: "txn_y",
				Amount:        100,
				Metadata:      paymentgateway.CheckoutMetadata{ProjectID: uuid.NewString(), InvestorID: ""},
			},
		},
		{
			name: "no amount anywhere",
			event: paymentgateway.Event{
				Type:          paymentgateway.EventCheckoutCompleted,
				TransactionID: "txn_z",
				Metadata:      paymentgateway.CheckoutMetadata{ProjectID: uuid.NewString(), InvestorID: uuid.NewString()},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.HandlePaymentConfirmed(context.Background(), &tt.event)
			if !errors.Is(err, ErrMissingMetadata) {
				t.Fatalf("expected ErrMissingMetadata, got %v", err)
			}
		})
	}
	if repo.recordCalls != 0 {
		t.Fatal("expected no store calls for unattributable events")
	}
}

func TestHandlePaymentConfirmed_FallsBackToMetadataAmount(t *testing.T) {
	repo := newRecorderRepoStub(activeProject())
	svc := NewService(repo, nil, nil, Options{AllowOverfunding: true})
	investorID := uuid.New()

	inv, err := svc.HandlePaymentConfirmed(context.Background(), &paymentgateway.Event{
		Type:          paymentgateway.EventCheckoutCompleted,
		TransactionID: "txn_meta",
		Metadata: paymentgateway.CheckoutMetadata{
			ProjectID:  repo.project.ID.String(),
			InvestorID: investorID.String(),
			Amount:     750,
		},
	})
	if err != nil {
		t.Fatalf("expected recording via metadata amount, got %v", err)
	}
	if inv.Amount != 750 {
		t.Fatalf("expected amount 750, got %d", inv.Amount)
	}
}
