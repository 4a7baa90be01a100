/**
 * @description
 * This file implements the investment recorder, the single entry point through
 * which confirmed payments become ledger entries. It is fed by the webhook
 * handler on live traffic and by the reconciliation job on replayed events.
 *
 * Key features:
 * - Validates the confirmation before any write; an invalid confirmation
 *   leaves the store untouched.
 * - Delegates to the repository's atomic RecordInvestment, which claims the
 *   payment reference, appends the ledger entry and bumps the aggregates in
 *   one transaction.
 * - Publishes an advisory event to RabbitMQ after the commit. Publish failure
 *   is logged and swallowed; the ledger is the source of truth.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
	"github.com/Bi11y4real/Startup-connect/pkg/paymentgateway"
)

// ErrMissingMetadata marks a provider event that verified but cannot be
// attributed to a project and investor. Such events are dropped, not retried.
var ErrMissingMetadata = errors.New("payment event is missing attribution metadata")

// RecordInvestment records a confirmed payment against a project. It is
// idempotent on the payment reference: recording the same reference twice
// returns ErrDuplicateConfirmation from the store and performs no writes.
func (s *Service) RecordInvestment(ctx context.Context, projectID, investorID uuid.UUID, amount int64, paymentReference string) (*domain.Investment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(paymentReference) == "" {
		return nil, fmt.Errorf("%w: payment reference", ErrMissingFields)
	}

	investment, err := s.repo.RecordInvestment(ctx, store.RecordInvestmentParams{
		ProjectID:        projectID,
		InvestorID:       investorID,
		Amount:           amount,
		PaymentReference: paymentReference,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateConfirmation) {
			log.Printf("level=info component=recorder outcome=duplicate payment_reference=%s project_id=%s", paymentReference, projectID)
		}
		return nil, err
	}

	log.Printf("level=info component=recorder outcome=recorded investment_id=%s project_id=%s investor_id=%s amount=%d payment_reference=%s",
		investment.ID, projectID, investorID, amount, paymentReference)

	s.maybeCompleteProject(ctx, projectID)
	s.publishRecorded(ctx, investment)
	return investment, nil
}

// HandlePaymentConfirmed consumes a verified provider event and routes it to
// the recorder. Events of other types are ignored. Events missing attribution
// metadata are dropped with a log line so the provider does not redeliver
// something that can never succeed.
func (s *Service) HandlePaymentConfirmed(ctx context.Context, event *paymentgateway.Event) (*domain.Investment, error) {
	if event.Type != paymentgateway.EventCheckoutCompleted {
		log.Printf("level=info component=recorder msg=\"ignoring event type\" type=%s event_id=%s", event.Type, event.ID)
		return nil, nil
	}

	projectID, err := uuid.Parse(event.Metadata.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad project id %q", ErrMissingMetadata, event.Metadata.ProjectID)
	}
	investorID, err := uuid.Parse(event.Metadata.InvestorID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad investor id %q", ErrMissingMetadata, event.Metadata.InvestorID)
	}

	// The provider echoes the metadata amount, but the event's own amount is
	// what actually moved. Trust the event.
	amount := event.Amount
	if amount <= 0 {
		amount = event.Metadata.Amount
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: non-positive amount", ErrMissingMetadata)
	}

	reference := event.TransactionID
	if strings.TrimSpace(reference) == "" {
		reference = event.ID
	}
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: no transaction reference", ErrMissingMetadata)
	}

	return s.RecordInvestment(ctx, projectID, investorID, amount, reference)
}

// maybeCompleteProject flips a project to completed once its goal is reached,
// when overfunding is disabled. Failure here is logged only; the money is
// already durably recorded.
func (s *Service) maybeCompleteProject(ctx context.Context, projectID uuid.UUID) {
	if s.opts.AllowOverfunding {
		return
	}
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		log.Printf("level=warn component=recorder msg=\"goal check failed\" project_id=%s err=%v", projectID, err)
		return
	}
	if project.Status == domain.ProjectStatusActive && project.FundingRaised >= project.FundingGoal {
		if err := s.repo.UpdateProjectStatus(ctx, projectID, domain.ProjectStatusCompleted); err != nil {
			log.Printf("level=warn component=recorder msg=\"auto-complete failed\" project_id=%s err=%v", projectID, err)
			return
		}
		log.Printf("level=info component=recorder msg=\"project reached funding goal\" project_id=%s raised=%d goal=%d", projectID, project.FundingRaised, project.FundingGoal)
	}
}

func (s *Service) publishRecorded(ctx context.Context, inv *domain.Investment) {
	if s.producer == nil {
		return
	}
	event := domain.InvestmentRecordedEvent{
		InvestmentID:     inv.ID,
		ProjectID:        inv.ProjectID,
		InvestorID:       inv.InvestorID,
		Amount:           inv.Amount,
		PaymentReference: inv.PaymentReference,
		RecordedAt:       inv.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.opts.EventExchange, "funding.investment.recorded", event); err != nil {
		log.Printf("level=warn component=recorder msg=\"event publish failed\" investment_id=%s err=%v", inv.ID, err)
	}
}
