/**
 * @description
 * Reconciliation job. Webhook delivery is at-least-once but not guaranteed:
 * an outage on our side can lose confirmations the provider already emitted.
 * This job periodically pulls the provider's durable event log, filters out
 * payment references the ledger already holds and replays the remainder
 * through the same recorder path the webhook uses. The idempotency claim in
 * the store makes replaying an already-recorded event a harmless no-op.
 */

package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Bi11y4real/Startup-connect/internal/store"
	"github.com/Bi11y4real/Startup-connect/pkg/paymentgateway"
)

// ReconcileResult summarizes one reconciliation run.
type ReconcileResult struct {
	Fetched  int
	Missing  int
	Recorded int
	Failed   int
}

// ReconcilePayments replays completed checkouts from the provider's event log
// that never made it into the ledger. Lookback bounds how far back the run
// scans. Individual replay failures are logged and counted; the run continues
// so one poisoned event cannot starve the rest.
func (s *Service) ReconcilePayments(ctx context.Context, lookback time.Duration) (*ReconcileResult, error) {
	since := time.Now().UTC().Add(-lookback)

	events, err := s.gateway.ListCompletedCheckouts(ctx, since)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{Fetched: len(events)}
	if len(events) == 0 {
		return result, nil
	}

	refs := make([]string, 0, len(events))
	byRef := make(map[string]*paymentgateway.Event, len(events))
	for i := range events {
		ev := &events[i]
		ref := ev.TransactionID
		if ref == "" {
			ref = ev.ID
		}
		if ref == "" {
			continue
		}
		refs = append(refs, ref)
		byRef[ref] = ev
	}

	missing, err := s.repo.FilterUnprocessedPaymentReferences(ctx, refs)
	if err != nil {
		return nil, err
	}
	result.Missing = len(missing)

	for _, ref := range missing {
		ev := byRef[ref]
		if ev == nil {
			continue
		}
		if _, err := s.HandlePaymentConfirmed(ctx, ev); err != nil {
			// Lost the race with a live webhook delivery; the money is in.
			if errors.Is(err, store.ErrDuplicateConfirmation) {
				continue
			}
			result.Failed++
			log.Printf("level=warn component=reconcile msg=\"replay failed\" payment_reference=%s err=%v", ref, err)
			continue
		}
		result.Recorded++
	}

	log.Printf("level=info component=reconcile outcome=done fetched=%d missing=%d recorded=%d failed=%d",
		result.Fetched, result.Missing, result.Recorded, result.Failed)
	return result, nil
}
