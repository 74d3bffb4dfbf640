package paystack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/nyumbahq/nyumba/internal/payment/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, SecretKey: testSecret}, zap.NewNop())
}

func TestVerifyTransactionSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref_1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+testSecret {
			t.Fatalf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"data": {
				"status": "success",
				"reference": "ref_1",
				"amount": 250000,
				"currency": "NGN",
				"paid_at": "2026-03-15T10:30:00Z",
				"metadata": {"type": "subscription", "agent_profile_id": "12345", "tier": "pro"},
				"customer": {"email": "agent@example.com"}
			}
		}`))
	})

	charge, err := client.VerifyTransaction(context.Background(), "ref_1")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !charge.Paid() {
		t.Fatalf("expected charge to be paid, status %q", charge.Status)
	}
	if charge.Amount != 250000 || charge.CustomerEmail != "agent@example.com" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
	if charge.Metadata["agent_profile_id"] != "12345" || charge.Metadata["tier"] != "pro" {
		t.Fatalf("metadata not carried through: %v", charge.Metadata)
	}
}

func TestVerifyTransactionUnknownReference(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.VerifyTransaction(context.Background(), "nope"); !errors.Is(err, domain.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestVerifyTransactionServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.VerifyTransaction(context.Background(), "ref_1"); !errors.Is(err, domain.ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
}

func TestVerifyTransactionFailedCharge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": true, "data": {"status": "failed", "reference": "ref_1", "amount": 100}}`))
	})

	charge, err := client.VerifyTransaction(context.Background(), "ref_1")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if charge.Paid() {
		t.Fatal("failed charge must not report paid")
	}
}
