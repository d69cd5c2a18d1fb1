package service

import (
	"context"

	"wishwell/internal/models"
)

// Ledger is the persistence boundary the services run against. The
// production implementation is repository.Ledger; tests substitute an
// in-memory fake. The Execute* operations are single atomic units: a
// failed step rolls the whole unit back, and applied=false reports a
// lost idempotency race with no effect re-applied.
type Ledger interface {
	CreateWish(ctx context.Context, w *models.Wish) error
	GetWish(ctx context.Context, id string) (*models.Wish, error)
	ListWishes(ctx context.Context, q models.WishQuery) ([]models.Wish, error)
	PublishWish(ctx context.Context, id string) (bool, error)

	CreateIntent(ctx context.Context, in *models.PaymentIntent) error
	GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
	CancelIntent(ctx context.Context, id string) (bool, error)
	ExecutePostingFee(ctx context.Context, intentID, payerRef, wishID string) (bool, error)
	ExecuteDonation(ctx context.Context, intentID, payerRef string, d *models.Donation) (bool, *models.Wish, error)

	ListDonations(ctx context.Context, wishID string) ([]models.Donation, error)
	Totals(ctx context.Context) (*models.LedgerTotals, error)
}
