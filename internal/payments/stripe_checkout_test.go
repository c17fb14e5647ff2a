package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

func TestStripeCheckout_CreatesSession(t *testing.T) {
	apptID := uuid.New()
	paymentID := uuid.New()

	var gotForm string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_123" {
			t.Errorf("unexpected auth header %s", auth)
		}
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		gotForm = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1"}`))
	}))
	defer server.Close()

	svc := NewStripeCheckoutService("sk_test_123", "https://shop.example.com/ok", "https://shop.example.com/cancel", logging.Default()).
		WithBaseURL(server.URL)

	resp, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{
		AppointmentID: apptID,
		PaymentID:     paymentID,
		AmountCents:   2000,
		Description:   "Deposit: fade",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.URL != "https://checkout.stripe.com/pay/cs_test_1" {
		t.Fatalf("unexpected url %s", resp.URL)
	}
	if resp.ProviderID != "cs_test_1" {
		t.Fatalf("unexpected provider id %s", resp.ProviderID)
	}
	if !strings.Contains(gotForm, "unit_amount%5D=2000") {
		t.Errorf("expected amount in form, got %s", gotForm)
	}
	if !strings.Contains(gotForm, apptID.String()) {
		t.Errorf("expected appointment metadata in form, got %s", gotForm)
	}
	if !strings.Contains(gotForm, paymentID.String()) {
		t.Errorf("expected payment metadata in form, got %s", gotForm)
	}
}

func TestStripeCheckout_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"no such customer"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewStripeCheckoutService("sk_test_123", "", "", logging.Default()).WithBaseURL(server.URL)
	_, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{
		AppointmentID: uuid.New(),
		AmountCents:   2000,
	})
	if err == nil {
		t.Fatal("expected error from stripe 400")
	}
}

func TestStripeCheckout_DryRun(t *testing.T) {
	svc := NewStripeCheckoutService("sk_test_123", "", "", logging.Default()).WithDryRun(true)

	resp, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{
		AppointmentID: uuid.New(),
		AmountCents:   2000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resp.URL, "https://checkout.stripe.com/dry-run/") {
		t.Fatalf("unexpected dry run url %s", resp.URL)
	}
}
