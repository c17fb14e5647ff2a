package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

type stubPaymentStore struct {
	updated     bool
	updatedID   uuid.UUID
	providerRef string
	processed   map[string]bool
	marked      bool
}

func newStubPaymentStore() *stubPaymentStore {
	return &stubPaymentStore{processed: make(map[string]bool)}
}

func (s *stubPaymentStore) UpdateStatusByID(ctx context.Context, id uuid.UUID, status PaymentStatus, providerRef string) error {
	s.updated = true
	s.updatedID = id
	s.providerRef = providerRef
	return nil
}

func (s *stubPaymentStore) AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	return s.processed[provider+":"+eventID], nil
}

func (s *stubPaymentStore) MarkProcessed(ctx context.Context, provider, eventID string) error {
	s.processed[provider+":"+eventID] = true
	s.marked = true
	return nil
}

type stubConfirmer struct {
	confirmed []uuid.UUID
	err       error
}

func (s *stubConfirmer) Confirm(ctx context.Context, appointmentID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.confirmed = append(s.confirmed, appointmentID)
	return nil
}

func buildStripePayload(t *testing.T, eventID, eventType, sessionID, paymentIntentID string, amountTotal int64, metadata map[string]string) []byte {
	t.Helper()
	evt := map[string]any{
		"id":      eventID,
		"type":    eventType,
		"created": time.Now().Unix(),
		"data": map[string]any{
			"object": map[string]any{
				"id":             sessionID,
				"payment_intent": paymentIntentID,
				"amount_total":   amountTotal,
				"currency":       "usd",
				"metadata":       metadata,
				"status":         "complete",
			},
		},
	}
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("failed to marshal stripe event: %v", err)
	}
	return data
}

func stripeSign(payload []byte, secret string) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + string(payload)))
	sig := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%s,v1=%s", ts, sig)
}

func TestStripeWebhookHandler_Success(t *testing.T) {
	apptID := uuid.New()
	paymentID := uuid.New()

	store := newStubPaymentStore()
	bookings := &stubConfirmer{}
	handler := NewStripeWebhookHandler("whsec_test123", store, bookings, logging.Default())

	body := buildStripePayload(t, "evt_stripe_123", "checkout.session.completed", "cs_123", "pi_123", 2000, map[string]string{
		"appointment_id": apptID.String(),
		"payment_id":     paymentID.String(),
	})

	req := httptest.NewRequest(http.MethodPost, "https://example.com/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", stripeSign(body, "whsec_test123"))

	rr := httptest.NewRecorder()
	handler.Handle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !store.updated {
		t.Fatal("expected payment update")
	}
	if store.updatedID != paymentID {
		t.Fatalf("expected payment %s updated, got %s", paymentID, store.updatedID)
	}
	if store.providerRef != "pi_123" {
		t.Fatalf("expected provider ref pi_123, got %s", store.providerRef)
	}
	if len(bookings.confirmed) != 1 || bookings.confirmed[0] != apptID {
		t.Fatalf("expected appointment %s confirmed, got %v", apptID, bookings.confirmed)
	}
	if !store.marked {
		t.Fatal("expected processed marker")
	}
}

func TestStripeWebhookHandler_InvalidSignature(t *testing.T) {
	handler := NewStripeWebhookHandler("whsec_test123", newStubPaymentStore(), &stubConfirmer{}, logging.Default())

	body := buildStripePayload(t, "evt_1", "checkout.session.completed", "cs_1", "pi_1", 2000, nil)
	req := httptest.NewRequest(http.MethodPost, "https://example.com/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")

	rr := httptest.NewRecorder()
	handler.Handle(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestStripeWebhookHandler_IgnoresOtherEvents(t *testing.T) {
	store := newStubPaymentStore()
	bookings := &stubConfirmer{}
	handler := NewStripeWebhookHandler("whsec_test123", store, bookings, logging.Default())

	body := buildStripePayload(t, "evt_2", "invoice.paid", "cs_2", "pi_2", 2000, nil)
	req := httptest.NewRequest(http.MethodPost, "https://example.com/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", stripeSign(body, "whsec_test123"))

	rr := httptest.NewRecorder()
	handler.Handle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.updated || len(bookings.confirmed) != 0 {
		t.Fatal("expected no side effects for unrelated events")
	}
}

func TestStripeWebhookHandler_Idempotent(t *testing.T) {
	apptID := uuid.New()
	store := newStubPaymentStore()
	bookings := &stubConfirmer{}
	handler := NewStripeWebhookHandler("whsec_test123", store, bookings, logging.Default())

	body := buildStripePayload(t, "evt_once", "checkout.session.completed", "cs_3", "pi_3", 2000, map[string]string{
		"appointment_id": apptID.String(),
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "https://example.com/webhooks/stripe", bytes.NewReader(body))
		req.Header.Set("Stripe-Signature", stripeSign(body, "whsec_test123"))
		rr := httptest.NewRecorder()
		handler.Handle(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d", i, rr.Code)
		}
	}

	if len(bookings.confirmed) != 1 {
		t.Fatalf("expected exactly one confirmation, got %d", len(bookings.confirmed))
	}
}

func TestStripeWebhookHandler_MissingMetadataAcked(t *testing.T) {
	store := newStubPaymentStore()
	bookings := &stubConfirmer{}
	handler := NewStripeWebhookHandler("whsec_test123", store, bookings, logging.Default())

	body := buildStripePayload(t, "evt_nometa", "checkout.session.completed", "cs_4", "pi_4", 2000, map[string]string{})
	req := httptest.NewRequest(http.MethodPost, "https://example.com/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", stripeSign(body, "whsec_test123"))

	rr := httptest.NewRecorder()
	handler.Handle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(bookings.confirmed) != 0 {
		t.Fatal("expected no confirmation without appointment metadata")
	}
}

func TestVerifyStripeSignature_StaleTimestamp(t *testing.T) {
	secret := "whsec_test123"
	payload := []byte(`{"id":"evt_old"}`)

	ts := fmt.Sprintf("%d", time.Now().Add(-10*time.Minute).Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + string(payload)))
	header := fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))

	if verifyStripeSignature(secret, payload, header) {
		t.Fatal("expected stale timestamp to be rejected")
	}
}
