package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"wishwell/config"
	"wishwell/internal/domain"
	"wishwell/internal/models"
)

// WishService owns the wish state machine: DRAFT -> AWAITING_FEE ->
// PUBLISHED -> FULFILLED.
type WishService struct {
	ledger Ledger
	cfg    *config.FundingConfig
}

func NewWishService(ledger Ledger, cfg *config.FundingConfig) *WishService {
	return &WishService{ledger: ledger, cfg: cfg}
}

type SubmitWishInput struct {
	Title             string
	Description       string
	AmountNeededCents int64
	Currency          string
	CreatorName       string
	CreatorEmail      string
	CreatorPaypal     string
	Category          string
	Urgency           string
	PhotoURL          string
}

// Submit validates the input, collecting every violated field, and
// creates the wish. A new wish starts in DRAFT and is immediately
// advanced to AWAITING_FEE: it becomes visible only once its posting
// fee is executed.
func (s *WishService) Submit(ctx context.Context, in SubmitWishInput) (*models.Wish, error) {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Title) == "" {
		verr.Add("title", "must not be empty")
	}
	if strings.TrimSpace(in.Description) == "" {
		verr.Add("description", "must not be empty")
	}
	if in.AmountNeededCents <= 0 {
		verr.Add("amount_needed", "must be greater than zero")
	}
	if !domain.ValidCurrency(in.Currency) {
		verr.Add("currency", "must be one of "+strings.Join(domain.AllowedCurrencies, ", "))
	}
	if !domain.ValidCategory(in.Category) {
		verr.Add("category", "unknown category")
	}
	if !domain.ValidUrgency(in.Urgency) {
		verr.Add("urgency", "must be low, medium or high")
	}
	if strings.TrimSpace(in.CreatorName) == "" {
		verr.Add("creator_name", "must not be empty")
	}
	if _, err := mail.ParseAddress(in.CreatorEmail); err != nil {
		verr.Add("creator_email", "must be a valid email address")
	}
	if !verr.Empty() {
		return nil, verr
	}

	w := &models.Wish{
		ID:                uuid.New().String(),
		Title:             strings.TrimSpace(in.Title),
		Description:       strings.TrimSpace(in.Description),
		Category:          in.Category,
		Urgency:           in.Urgency,
		Currency:          in.Currency,
		AmountNeededCents: in.AmountNeededCents,
		CreatorName:       strings.TrimSpace(in.CreatorName),
		CreatorEmail:      in.CreatorEmail,
		CreatorPaypal:     in.CreatorPaypal,
		PhotoURL:          in.PhotoURL,
		Status:            domain.WishStatusAwaitingFee,
	}
	if err := s.ledger.CreateWish(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// MarkPublished transitions AWAITING_FEE -> PUBLISHED. Calling it on an
// already published wish is a no-op, not an error.
func (s *WishService) MarkPublished(ctx context.Context, wishID string) error {
	ok, err := s.ledger.PublishWish(ctx, wishID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	w, err := s.ledger.GetWish(ctx, wishID)
	if err != nil {
		return err
	}
	if w.Status == domain.WishStatusPublished {
		return nil
	}
	return &domain.InvalidStateError{Entity: "wish", ID: wishID, State: w.Status, Op: "publish"}
}

type WishFilter struct {
	Category string
	Urgency  string
	Limit    int
}

// ListPublished returns wishes in PUBLISHED or FULFILLED state, newest
// first. Unpublished wishes never leave this boundary.
func (s *WishService) ListPublished(ctx context.Context, f WishFilter) ([]models.Wish, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}
	return s.ledger.ListWishes(ctx, models.WishQuery{
		States:   []string{domain.WishStatusPublished, domain.WishStatusFulfilled},
		Category: f.Category,
		Urgency:  f.Urgency,
		Limit:    limit,
	})
}

// Get returns any wish regardless of state. Internal use only; the API
// goes through GetPublished.
func (s *WishService) Get(ctx context.Context, id string) (*models.Wish, error) {
	return s.ledger.GetWish(ctx, id)
}

// GetPublished returns the wish only when it is publicly visible.
// Draft and fee-pending wishes are reported as not found rather than
// revealed.
func (s *WishService) GetPublished(ctx context.Context, id string) (*models.Wish, error) {
	w, err := s.ledger.GetWish(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WishStatusPublished && w.Status != domain.WishStatusFulfilled {
		return nil, domain.ErrNotFound
	}
	return w, nil
}

// SuccessStories lists fulfilled wishes, newest first.
func (s *WishService) SuccessStories(ctx context.Context, limit int) ([]models.Wish, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}
	return s.ledger.ListWishes(ctx, models.WishQuery{
		States: []string{domain.WishStatusFulfilled},
		Limit:  limit,
	})
}

// Donations lists the executed donations of a published wish.
func (s *WishService) Donations(ctx context.Context, wishID string) ([]models.Donation, error) {
	if _, err := s.GetPublished(ctx, wishID); err != nil {
		return nil, err
	}
	return s.ledger.ListDonations(ctx, wishID)
}

func (s *WishService) Categories() []string {
	return domain.Categories
}
