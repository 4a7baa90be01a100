/**
 * @description
 * Inbound webhook handler for the payment provider. This is the hot path for
 * money: a verified checkout.completed event becomes a ledger entry through
 * the recorder.
 *
 * Response codes drive the provider's retry behavior:
 * - 401: signature did not verify; nothing reached business logic.
 * - 200: event handled, or a terminal condition a retry cannot fix
 *   (duplicate reference, missing metadata, unknown project).
 * - 500: transient store failure; the provider should redeliver.
 */

package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Bi11y4real/Startup-connect/internal/app"
	"github.com/Bi11y4real/Startup-connect/internal/store"
	"github.com/Bi11y4real/Startup-connect/pkg/paymentgateway"
)

const maxWebhookBodyBytes = 1 << 20

// PaymentWebhookHandler handles POST /webhooks/payment.
func (h *FundingHandlers) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	event, err := paymentgateway.VerifyAndParseEvent(body, r.Header.Get(paymentgateway.SignatureHeader), h.webhookSecret)
	if err != nil {
		if errors.Is(err, paymentgateway.ErrInvalidSignature) {
			log.Printf("level=warn component=api endpoint=payment_webhook outcome=reject reason=bad_signature remote=%s", r.RemoteAddr)
			h.writeError(w, http.StatusUnauthorized, "Invalid signature")
			return
		}
		log.Printf("level=warn component=api endpoint=payment_webhook outcome=reject reason=malformed err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Malformed event")
		return
	}

	investment, err := h.service.HandlePaymentConfirmed(r.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateConfirmation):
			// Redelivery of an already-recorded payment. Acknowledge so the
			// provider stops retrying.
			h.writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate ignored"})
		case errors.Is(err, app.ErrMissingMetadata):
			// The event can never be attributed; retrying will not help.
			log.Printf("level=warn component=api endpoint=payment_webhook outcome=dropped event_id=%s err=%v", event.ID, err)
			h.writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
		case errors.Is(err, store.ErrProjectNotFound), errors.Is(err, store.ErrProjectNotActive):
			log.Printf("level=warn component=api endpoint=payment_webhook outcome=dropped event_id=%s err=%v", event.ID, err)
			h.writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
		default:
			log.Printf("level=error component=api endpoint=payment_webhook outcome=error event_id=%s err=%v", event.ID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not record payment")
		}
		return
	}

	if investment == nil {
		// Event type we do not consume.
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "recorded", "investment_id": investment.ID.String()})
}
