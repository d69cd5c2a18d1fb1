package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// StubProvider is an in-process provider for development and tests.
// Every opened authorization is approved on confirm with the amount it
// was opened for.
type StubProvider struct {
	mu    sync.Mutex
	seq   int64
	open  map[string]int64
}

func NewStubProvider() *StubProvider {
	return &StubProvider{open: map[string]int64{}}
}

func (s *StubProvider) OpenAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ref := fmt.Sprintf("stub_%d_%d", time.Now().UnixNano(), s.seq)
	s.open[ref] = req.AmountCents
	return &Authorization{
		ProviderRef: ref,
		RedirectURL: req.ReturnURL + "?token=" + ref,
	}, nil
}

func (s *StubProvider) ConfirmAuthorization(ctx context.Context, providerRef, payerRef string) (*Confirmation, error) {
	if !strings.HasPrefix(providerRef, "stub_") || payerRef == "" {
		return &Confirmation{Approved: false}, nil
	}
	s.mu.Lock()
	cents, ok := s.open[providerRef]
	s.mu.Unlock()
	if !ok {
		return &Confirmation{Approved: false}, nil
	}
	return &Confirmation{Approved: true, ConfirmedCents: cents}, nil
}
