package gateway

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the provider could not be reached before the
	// configured timeout. Nothing was confirmed; the caller retries.
	ErrUnavailable = errors.New("gateway: provider unavailable")
	// ErrRejected means the provider explicitly refused to confirm the
	// authorization.
	ErrRejected = errors.New("gateway: confirmation rejected")
)

// AuthorizationRequest opens a redirect-based authorization with the
// provider. The client is sent to RedirectURL and comes back to
// ReturnURL carrying a payer reference, or to CancelURL.
type AuthorizationRequest struct {
	AmountCents int64
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
}

type Authorization struct {
	ProviderRef string
	RedirectURL string
}

type Confirmation struct {
	Approved       bool
	ConfirmedCents int64
}

type Provider interface {
	OpenAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error)
	ConfirmAuthorization(ctx context.Context, providerRef, payerRef string) (*Confirmation, error)
}
