package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakePaypal serves the three endpoints the provider touches.
type fakePaypal struct {
	tokenStatus   int
	createStatus  int
	executeStatus int
	executeState  string
	lastCreate    map[string]interface{}
	lastExecute   map[string]interface{}
}

func newFakePaypal() *fakePaypal {
	return &fakePaypal{
		tokenStatus:   http.StatusOK,
		createStatus:  http.StatusCreated,
		executeStatus: http.StatusOK,
		executeState:  "approved",
	}
}

func (f *fakePaypal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		if !ok || user == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(f.tokenStatus)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/v1/payments/payment", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&f.lastCreate)
		w.WriteHeader(f.createStatus)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "PAY-42",
			"state": "created",
			"links": []map[string]string{
				{"rel": "self", "href": "https://paypal.example/self"},
				{"rel": "approval_url", "href": "https://paypal.example/approve/PAY-42"},
			},
		})
	})
	mux.HandleFunc("/v1/payments/payment/PAY-42/execute", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&f.lastExecute)
		w.WriteHeader(f.executeStatus)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "PAY-42",
			"state": f.executeState,
			"transactions": []map[string]interface{}{
				{"amount": map[string]string{"total": "25.00", "currency": "EUR"}},
			},
		})
	})
	return mux
}

func newTestProvider(t *testing.T, f *fakePaypal) (*PaypalProvider, func()) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	return NewPaypalProvider(srv.URL, "client-id", "client-secret", 2*time.Second), srv.Close
}

func TestPaypalOpenAuthorization(t *testing.T) {
	f := newFakePaypal()
	p, done := newTestProvider(t, f)
	defer done()

	auth, err := p.OpenAuthorization(context.Background(), AuthorizationRequest{
		AmountCents: 2500,
		Currency:    "EUR",
		Description: "Donation",
		ReturnURL:   "https://wishwell.example/return",
		CancelURL:   "https://wishwell.example/cancel",
	})
	if err != nil {
		t.Fatalf("OpenAuthorization failed: %v", err)
	}
	if auth.ProviderRef != "PAY-42" {
		t.Errorf("expected provider ref PAY-42, got %s", auth.ProviderRef)
	}
	if auth.RedirectURL != "https://paypal.example/approve/PAY-42" {
		t.Errorf("expected approval url, got %s", auth.RedirectURL)
	}

	txs := f.lastCreate["transactions"].([]interface{})
	amount := txs[0].(map[string]interface{})["amount"].(map[string]interface{})
	if amount["total"] != "25.00" || amount["currency"] != "EUR" {
		t.Errorf("unexpected amount sent to provider: %v", amount)
	}
	if f.lastCreate["intent"] != "sale" {
		t.Errorf("expected sale intent, got %v", f.lastCreate["intent"])
	}
}

func TestPaypalConfirmAuthorization(t *testing.T) {
	f := newFakePaypal()
	p, done := newTestProvider(t, f)
	defer done()

	conf, err := p.ConfirmAuthorization(context.Background(), "PAY-42", "PAYER-9")
	if err != nil {
		t.Fatalf("ConfirmAuthorization failed: %v", err)
	}
	if !conf.Approved {
		t.Error("expected approval")
	}
	if conf.ConfirmedCents != 2500 {
		t.Errorf("expected 2500 confirmed cents, got %d", conf.ConfirmedCents)
	}
	if f.lastExecute["payer_id"] != "PAYER-9" {
		t.Errorf("expected payer id to be forwarded, got %v", f.lastExecute)
	}
}

func TestPaypalConfirmNotApproved(t *testing.T) {
	f := newFakePaypal()
	f.executeState = "failed"
	p, done := newTestProvider(t, f)
	defer done()

	conf, err := p.ConfirmAuthorization(context.Background(), "PAY-42", "PAYER-9")
	if err != nil {
		t.Fatalf("ConfirmAuthorization failed: %v", err)
	}
	if conf.Approved {
		t.Error("non-approved state must not count as approved")
	}
}

func TestPaypalErrorMapping(t *testing.T) {
	t.Run("token endpoint down is unavailable", func(t *testing.T) {
		f := newFakePaypal()
		f.tokenStatus = http.StatusServiceUnavailable
		p, done := newTestProvider(t, f)
		defer done()
		_, err := p.OpenAuthorization(context.Background(), AuthorizationRequest{AmountCents: 100, Currency: "EUR"})
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("create 5xx is unavailable", func(t *testing.T) {
		f := newFakePaypal()
		f.createStatus = http.StatusBadGateway
		p, done := newTestProvider(t, f)
		defer done()
		_, err := p.OpenAuthorization(context.Background(), AuthorizationRequest{AmountCents: 100, Currency: "EUR"})
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("execute 4xx is rejected", func(t *testing.T) {
		f := newFakePaypal()
		f.executeStatus = http.StatusBadRequest
		p, done := newTestProvider(t, f)
		defer done()
		_, err := p.ConfirmAuthorization(context.Background(), "PAY-42", "PAYER-9")
		if !errors.Is(err, ErrRejected) {
			t.Errorf("expected ErrRejected, got %v", err)
		}
	})

	t.Run("execute 5xx is unavailable", func(t *testing.T) {
		f := newFakePaypal()
		f.executeStatus = http.StatusInternalServerError
		p, done := newTestProvider(t, f)
		defer done()
		_, err := p.ConfirmAuthorization(context.Background(), "PAY-42", "PAYER-9")
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("unreachable host is unavailable", func(t *testing.T) {
		p := NewPaypalProvider("http://127.0.0.1:1", "id", "secret", 500*time.Millisecond)
		_, err := p.ConfirmAuthorization(context.Background(), "PAY-42", "PAYER-9")
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})
}

func TestStubProvider(t *testing.T) {
	s := NewStubProvider()
	auth, err := s.OpenAuthorization(context.Background(), AuthorizationRequest{
		AmountCents: 1234,
		Currency:    "EUR",
		ReturnURL:   "https://wishwell.example/return",
	})
	if err != nil {
		t.Fatalf("OpenAuthorization failed: %v", err)
	}

	conf, err := s.ConfirmAuthorization(context.Background(), auth.ProviderRef, "PAYER-1")
	if err != nil || !conf.Approved {
		t.Fatalf("expected approval, got %v %v", conf, err)
	}
	if conf.ConfirmedCents != 1234 {
		t.Errorf("expected opened amount back, got %d", conf.ConfirmedCents)
	}

	if conf, _ := s.ConfirmAuthorization(context.Background(), "unknown-ref", "PAYER-1"); conf.Approved {
		t.Error("unknown reference must not be approved")
	}
	if conf, _ := s.ConfirmAuthorization(context.Background(), auth.ProviderRef, ""); conf.Approved {
		t.Error("missing payer reference must not be approved")
	}
}
