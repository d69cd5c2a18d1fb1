package service

import (
	"context"
	"fmt"
	"sync"

	"wishwell/config"
	"wishwell/internal/repository"
	"wishwell/pkg/gateway"
)

// testProvider is a controllable gateway provider.
type testProvider struct {
	mu             sync.Mutex
	opened         int
	confirmed      int
	openErr        error
	confirmErr     error
	approve        bool
	confirmedCents int64
}

func newTestProvider() *testProvider {
	return &testProvider{approve: true}
}

func (p *testProvider) OpenAuthorization(ctx context.Context, req gateway.AuthorizationRequest) (*gateway.Authorization, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.opened++
	ref := fmt.Sprintf("test-ref-%d", p.opened)
	return &gateway.Authorization{
		ProviderRef: ref,
		RedirectURL: "https://provider.example/approve/" + ref,
	}, nil
}

func (p *testProvider) ConfirmAuthorization(ctx context.Context, providerRef, payerRef string) (*gateway.Confirmation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.confirmErr != nil {
		return nil, p.confirmErr
	}
	p.confirmed++
	return &gateway.Confirmation{Approved: p.approve, ConfirmedCents: p.confirmedCents}, nil
}

func testFunding() *config.FundingConfig {
	return &config.FundingConfig{
		PostingFeeCents: 200,
		PostingFeeCcy:   "EUR",
		ReportingCcy:    "EUR",
		Rates: map[string]float64{
			"EUR": 1.0,
			"USD": 0.92,
			"GBP": 1.17,
			"CAD": 0.67,
			"AUD": 0.60,
		},
		MaxListLimit:     100,
		DefaultListLimit: 50,
	}
}

type testEnv struct {
	ledger   *repository.MemLedger
	provider *testProvider
	wishes   *WishService
	payments *PaymentService
	stats    *StatsService
}

func newTestEnv() *testEnv {
	ledger := repository.NewMemLedger()
	provider := newTestProvider()
	funding := testFunding()
	stats := NewStatsService(ledger, funding, &config.StatsConfig{RefreshInterval: 0}, nil)
	return &testEnv{
		ledger:   ledger,
		provider: provider,
		wishes:   NewWishService(ledger, funding),
		payments: NewPaymentService(ledger, provider, funding, stats),
		stats:    stats,
	}
}

func validWishInput() SubmitWishInput {
	return SubmitWishInput{
		Title:             "New winter coat",
		Description:       "It gets cold up here and mine is falling apart.",
		AmountNeededCents: 10000,
		Currency:          "EUR",
		CreatorName:       "Maya K.",
		CreatorEmail:      "maya@example.com",
		Category:          "family",
		Urgency:           "medium",
	}
}
