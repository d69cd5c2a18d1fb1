package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"wishwell/config"
	"wishwell/internal/domain"
	"wishwell/internal/models"
	"wishwell/pkg/gateway"
)

// PaymentService is the gateway adapter plus the donation processor:
// it opens redirect-based authorizations with the provider and turns
// their asynchronous confirmations into idempotent ledger transitions.
type PaymentService struct {
	ledger   Ledger
	provider gateway.Provider
	cfg      *config.FundingConfig
	stats    *StatsService
}

func NewPaymentService(ledger Ledger, provider gateway.Provider, cfg *config.FundingConfig, stats *StatsService) *PaymentService {
	return &PaymentService{ledger: ledger, provider: provider, cfg: cfg, stats: stats}
}

type CreatePaymentInput struct {
	AmountCents int64
	Currency    string
	Purpose     string
	WishID      string
	ReturnURL   string
	CancelURL   string
}

type CreatePaymentResult struct {
	Intent      *models.PaymentIntent
	RedirectURL string
}

// CreateAuthorization opens an authorization with the provider and
// persists the matching intent in CREATED. The caller must send the
// client to RedirectURL; nothing is charged until execution.
func (s *PaymentService) CreateAuthorization(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	verr := &domain.ValidationError{}
	if in.AmountCents <= 0 {
		verr.Add("amount", "must be greater than zero")
	}
	if !domain.ValidCurrency(in.Currency) {
		verr.Add("currency", "must be one of "+strings.Join(domain.AllowedCurrencies, ", "))
	}
	if in.Purpose != domain.PurposePostingFee && in.Purpose != domain.PurposeDonation {
		verr.Add("purpose", "must be POSTING_FEE or DONATION")
	}
	if in.WishID == "" {
		verr.Add("wish_id", "required")
	}
	if in.ReturnURL == "" {
		verr.Add("return_url", "required")
	}
	if in.CancelURL == "" {
		verr.Add("cancel_url", "required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	wish, err := s.ledger.GetWish(ctx, in.WishID)
	if err != nil {
		return nil, err
	}

	var description string
	switch in.Purpose {
	case domain.PurposePostingFee:
		if wish.Status != domain.WishStatusAwaitingFee {
			return nil, &domain.InvalidStateError{Entity: "wish", ID: wish.ID, State: wish.Status, Op: "pay posting fee"}
		}
		if in.AmountCents != s.cfg.PostingFeeCents || in.Currency != s.cfg.PostingFeeCcy {
			return nil, verr.Add("amount", fmt.Sprintf("posting fee is %d %s cents", s.cfg.PostingFeeCents, s.cfg.PostingFeeCcy))
		}
		description = "Posting fee for wish " + wish.ID
	case domain.PurposeDonation:
		if wish.Status != domain.WishStatusPublished {
			return nil, &domain.InvalidStateError{Entity: "wish", ID: wish.ID, State: wish.Status, Op: "receive donation"}
		}
		description = "Donation to: " + wish.Title
	}

	auth, err := s.provider.OpenAuthorization(ctx, gateway.AuthorizationRequest{
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Description: description,
		ReturnURL:   in.ReturnURL,
		CancelURL:   in.CancelURL,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			log.Printf("[PAYMENT] open authorization failed: %v", err)
			return nil, domain.ErrGatewayUnavailable
		}
		return nil, err
	}

	intent := &models.PaymentIntent{
		ID:          uuid.New().String(),
		Purpose:     in.Purpose,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		WishID:      in.WishID,
		Status:      domain.IntentStatusCreated,
		ProviderRef: auth.ProviderRef,
	}
	if err := s.ledger.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}
	log.Printf("[PAYMENT] intent %s created purpose=%s wish=%s amount=%d %s", intent.ID, intent.Purpose, intent.WishID, intent.AmountCents, intent.Currency)
	return &CreatePaymentResult{Intent: intent, RedirectURL: auth.RedirectURL}, nil
}

type ExecuteResult struct {
	Purpose string `json:"purpose"`
	WishID  string `json:"wish_id"`
}

// ExecuteAuthorization confirms the authorization with the provider and
// applies its effect exactly once. Re-invoking it for an already
// executed intent returns the same result without touching the ledger:
// this is the idempotency boundary of the whole system.
func (s *PaymentService) ExecuteAuthorization(ctx context.Context, paymentID, payerRef string) (*ExecuteResult, error) {
	intent, err := s.ledger.GetIntent(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	switch intent.Status {
	case domain.IntentStatusExecuted:
		return &ExecuteResult{Purpose: intent.Purpose, WishID: intent.WishID}, nil
	case domain.IntentStatusCancelled:
		return nil, &domain.InvalidStateError{Entity: "payment", ID: intent.ID, State: intent.Status, Op: "execute"}
	}

	conf, err := s.provider.ConfirmAuthorization(ctx, intent.ProviderRef, payerRef)
	if err != nil {
		if errors.Is(err, gateway.ErrRejected) {
			return nil, domain.ErrPaymentVerification
		}
		if errors.Is(err, gateway.ErrUnavailable) {
			log.Printf("[PAYMENT] confirm failed for intent %s: %v", intent.ID, err)
			return nil, domain.ErrGatewayUnavailable
		}
		return nil, err
	}
	if !conf.Approved {
		return nil, domain.ErrPaymentVerification
	}
	if conf.ConfirmedCents > 0 && conf.ConfirmedCents != intent.AmountCents {
		log.Printf("[PAYMENT] intent %s confirmed amount %d differs from opened %d", intent.ID, conf.ConfirmedCents, intent.AmountCents)
	}

	applied, err := s.onExecuted(ctx, intent, payerRef)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race against a concurrent delivery of the same
		// confirmation. The winner already applied the effect.
		current, err := s.ledger.GetIntent(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if current.Status != domain.IntentStatusExecuted {
			return nil, &domain.InvalidStateError{Entity: "payment", ID: current.ID, State: current.Status, Op: "execute"}
		}
	} else {
		s.stats.Refresh(ctx)
	}
	return &ExecuteResult{Purpose: intent.Purpose, WishID: intent.WishID}, nil
}

// onExecuted dispatches the confirmed intent by purpose. Both branches
// are single ledger transactions that claim the intent first, so a
// re-delivered confirmation can never re-apply aggregates.
func (s *PaymentService) onExecuted(ctx context.Context, intent *models.PaymentIntent, payerRef string) (bool, error) {
	switch intent.Purpose {
	case domain.PurposePostingFee:
		applied, err := s.ledger.ExecutePostingFee(ctx, intent.ID, payerRef, intent.WishID)
		if err != nil {
			return false, err
		}
		if applied {
			log.Printf("[PAYMENT] posting fee executed, wish %s published", intent.WishID)
		}
		return applied, nil
	case domain.PurposeDonation:
		wish, err := s.ledger.GetWish(ctx, intent.WishID)
		if err != nil {
			return false, err
		}
		rate := s.rate(intent.Currency, wish.Currency)
		d := &models.Donation{
			ID:              uuid.New().String(),
			WishID:          intent.WishID,
			IntentID:        intent.ID,
			AmountCents:     intent.AmountCents,
			Currency:        intent.Currency,
			WishAmountCents: convertCents(intent.AmountCents, rate),
			FxRate:          rate,
			ExecutedAt:      time.Now(),
		}
		applied, updated, err := s.ledger.ExecuteDonation(ctx, intent.ID, payerRef, d)
		if err != nil {
			return false, err
		}
		if applied {
			log.Printf("[PAYMENT] donation %s applied to wish %s: received=%d donors=%d status=%s",
				d.ID, updated.ID, updated.DonationsReceivedCents, updated.DonorCount, updated.Status)
		}
		return applied, nil
	default:
		return false, fmt.Errorf("unknown intent purpose %q", intent.Purpose)
	}
}

// CancelAuthorization completes the CREATED -> CANCELLED edge when the
// client abandons the provider redirect. Cancelling twice is a no-op.
func (s *PaymentService) CancelAuthorization(ctx context.Context, paymentID string) error {
	ok, err := s.ledger.CancelIntent(ctx, paymentID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	intent, err := s.ledger.GetIntent(ctx, paymentID)
	if err != nil {
		return err
	}
	if intent.Status == domain.IntentStatusCancelled {
		return nil
	}
	return &domain.InvalidStateError{Entity: "payment", ID: intent.ID, State: intent.Status, Op: "cancel"}
}

// rate returns the recorded conversion rate from one currency into
// another via the reporting currency table.
func (s *PaymentService) rate(from, to string) float64 {
	if from == to {
		return 1
	}
	rf, okf := s.cfg.Rates[from]
	rt, okt := s.cfg.Rates[to]
	if !okf || !okt || rt == 0 {
		return 1
	}
	return rf / rt
}

func convertCents(cents int64, rate float64) int64 {
	return int64(math.Round(float64(cents) * rate))
}
