package paymentgateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerifyAndParseEvent(t *testing.T) {
	secret := "whsec_test"
	event := Event{
		ID:            "evt_1",
		Type:          EventCheckoutCompleted,
		TransactionID: "txn_1",
		Amount:        1200,
		Metadata: CheckoutMetadata{
			ProjectID:  "0f6e9a92-1111-4222-8333-444455556666",
			InvestorID: "0f6e9a92-aaaa-4bbb-8ccc-ddddeeeeffff",
			Amount:     1200,
		},
	}
	body, _ := json.Marshal(event)

	tests := []struct {
		name      string
		body      []byte
		signature string
		secret    string
		wantErr   error
	}{
		{
			name:      "valid signature",
			body:      body,
			signature: SignBody(body, secret),
			secret:    secret,
		},
		{
			name:      "valid signature with algorithm prefix",
			body:      body,
			signature: "sha256=" + SignBody(body, secret),
			secret:    secret,
		},
		{
			name:      "wrong secret",
			body:      body,
			signature: SignBody(body, "other_secret"),
			secret:    secret,
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "tampered body",
			body:      append(append([]byte{}, body...), ' '),
			signature: SignBody(body, secret),
			secret:    secret,
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "missing signature",
			body:      body,
			signature: "",
			secret:    secret,
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "garbage signature",
			body:      body,
			signature: "not-hex",
			secret:    secret,
			wantErr:   ErrInvalidSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := VerifyAndParseEvent(tt.body, tt.signature, tt.secret)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed.TransactionID != event.TransactionID || parsed.Amount != event.Amount {
				t.Fatalf("parsed event mismatch: %+v", parsed)
			}
		})
	}
}

func TestVerifyAndParseEvent_MalformedPayload(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"not":"an event"`)

	_, err := VerifyAndParseEvent(body, SignBody(body, secret), secret)
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}

	// Valid JSON but no event type.
	body = []byte(`{"id":"evt_2"}`)
	_, err = VerifyAndParseEvent(body, SignBody(body, secret), secret)
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for missing type, got %v", err)
	}
}

func TestCreateCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkouts" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Fatalf("unexpected authorization header: %s", got)
		}

		var params CheckoutParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		if params.Amount != 5000 || params.Metadata.ProjectID == "" {
			t.Fatalf("unexpected params: %+v", params)
		}

		json.NewEncoder(w).Encode(CheckoutSession{
			CheckoutID:  "chk_123",
			RedirectURL: "https://pay.example/chk_123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	session, err := client.CreateCheckout(context.Background(), CheckoutParams{
		Amount:   5000,
		Currency: "usd",
		Metadata: CheckoutMetadata{ProjectID: "p1", InvestorID: "i1", Amount: 5000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.CheckoutID != "chk_123" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestCreateCheckout_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{
				{"title": "Invalid amount", "detail": "amount must be positive", "status": "422"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	_, err := client.CreateCheckout(context.Background(), CheckoutParams{Amount: -1})
	if err == nil {
		t.Fatal("expected provider error")
	}
	var apiErr *ErrorResponse
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected ErrorResponse, got %T: %v", err, err)
	}
	if apiErr.Errors[0].Title != "Invalid amount" {
		t.Fatalf("unexpected error payload: %+v", apiErr)
	}
}

func TestListCompletedCheckouts(t *testing.T) {
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/events" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("type") != EventCheckoutCompleted {
			t.Fatalf("unexpected type filter: %s", q.Get("type"))
		}
		if q.Get("since") != since.Format(time.RFC3339) {
			t.Fatalf("unexpected since filter: %s", q.Get("since"))
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []Event{
				{ID: "evt_1", Type: EventCheckoutCompleted, TransactionID: "txn_1", Amount: 100},
				{ID: "evt_2", Type: EventCheckoutCompleted, TransactionID: "txn_2", Amount: 200},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	events, err := client.ListCompletedCheckouts(context.Background(), since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[1].TransactionID != "txn_2" {
		t.Fatalf("unexpected events: %+v", events)
	}
}
