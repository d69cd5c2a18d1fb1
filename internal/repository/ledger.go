package repository

import (
	"context"
	"errors"
	"time"

	"wishwell/internal/domain"
	"wishwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is the durable record of wishes, payment intents and
// donations. Per-entity atomicity lives here: intent status moves by
// conditional UPDATE, wish aggregates move under a row lock, and the
// execute operations run as single transactions.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (r *Ledger) CreateWish(ctx context.Context, w *models.Wish) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *Ledger) GetWish(ctx context.Context, id string) (*models.Wish, error) {
	var w models.Wish
	err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Ledger) ListWishes(ctx context.Context, q models.WishQuery) ([]models.Wish, error) {
	tx := r.db.WithContext(ctx).Model(&models.Wish{}).Where("status IN ?", q.States)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Urgency != "" {
		tx = tx.Where("urgency = ?", q.Urgency)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var wishes []models.Wish
	err := tx.Order("created_at DESC").Find(&wishes).Error
	return wishes, err
}

// PublishWish flips AWAITING_FEE to PUBLISHED. Returns false when the
// wish was not awaiting its fee, leaving the row untouched.
func (r *Ledger) PublishWish(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Wish{}).
		Where("id = ? AND status = ?", id, domain.WishStatusAwaitingFee).
		Update("status", domain.WishStatusPublished)
	return res.RowsAffected > 0, res.Error
}

func (r *Ledger) CreateIntent(ctx context.Context, in *models.PaymentIntent) error {
	return r.db.WithContext(ctx).Create(in).Error
}

func (r *Ledger) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	var in models.PaymentIntent
	err := r.db.WithContext(ctx).First(&in, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// CancelIntent moves CREATED or AUTHORIZED to CANCELLED. Returns false
// when the intent had already left those states.
func (r *Ledger) CancelIntent(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("id = ? AND status IN ?", id, []string{domain.IntentStatusCreated, domain.IntentStatusAuthorized}).
		Update("status", domain.IntentStatusCancelled)
	return res.RowsAffected > 0, res.Error
}

// claimIntent CASes the intent into EXECUTED inside tx. Exactly one
// concurrent caller wins; the rest see false and re-read.
func claimIntent(tx *gorm.DB, intentID, payerRef string) (bool, error) {
	now := time.Now()
	res := tx.Model(&models.PaymentIntent{}).
		Where("id = ? AND status IN ?", intentID, []string{domain.IntentStatusCreated, domain.IntentStatusAuthorized}).
		Updates(map[string]interface{}{
			"status":     domain.IntentStatusExecuted,
			"payer_ref":  payerRef,
			"applied_at": &now,
		})
	return res.RowsAffected > 0, res.Error
}

// ExecutePostingFee marks the intent executed and publishes its wish,
// all in one transaction. Returns applied=false when another delivery
// already executed the intent; nothing is re-applied in that case.
func (r *Ledger) ExecutePostingFee(ctx context.Context, intentID, payerRef, wishID string) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := claimIntent(tx, intentID, payerRef)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		var w models.Wish
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, "id = ?", wishID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		switch w.Status {
		case domain.WishStatusAwaitingFee:
			if err := tx.Model(&w).Update("status", domain.WishStatusPublished).Error; err != nil {
				return err
			}
		case domain.WishStatusPublished, domain.WishStatusFulfilled:
			// already visible, nothing to do
		default:
			return &domain.InvalidStateError{Entity: "wish", ID: w.ID, State: w.Status, Op: "publish"}
		}
		applied = true
		return nil
	})
	return applied, err
}

// ExecuteDonation marks the intent executed, records the donation and
// applies the wish aggregates as one atomic unit. The wish row lock
// serializes concurrent donations to the same wish; donations to other
// wishes do not contend. Returns applied=false when another delivery
// already executed the intent.
func (r *Ledger) ExecuteDonation(ctx context.Context, intentID, payerRef string, d *models.Donation) (bool, *models.Wish, error) {
	applied := false
	var out *models.Wish
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := claimIntent(tx, intentID, payerRef)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		var w models.Wish
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, "id = ?", d.WishID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		w.DonationsReceivedCents += d.WishAmountCents
		w.DonorCount++
		w.FulfillmentPercentage = models.FulfillmentPct(w.DonationsReceivedCents, w.AmountNeededCents)
		if w.DonationsReceivedCents >= w.AmountNeededCents {
			w.Status = domain.WishStatusFulfilled
		}
		err = tx.Model(&models.Wish{}).Where("id = ?", w.ID).
			Updates(map[string]interface{}{
				"donations_received_cents": w.DonationsReceivedCents,
				"donor_count":              w.DonorCount,
				"fulfillment_percentage":   w.FulfillmentPercentage,
				"status":                   w.Status,
			}).Error
		if err != nil {
			return err
		}
		applied = true
		out = &w
		return nil
	})
	return applied, out, err
}

func (r *Ledger) ListDonations(ctx context.Context, wishID string) ([]models.Donation, error) {
	var ds []models.Donation
	err := r.db.WithContext(ctx).
		Where("wish_id = ?", wishID).
		Order("executed_at DESC").
		Find(&ds).Error
	return ds, err
}

// Totals scans the ledger for the statistics aggregator.
func (r *Ledger) Totals(ctx context.Context) (*models.LedgerTotals, error) {
	t := &models.LedgerTotals{RaisedByCurrency: map[string]int64{}}
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Wish{}).Count(&t.TotalWishes).Error; err != nil {
		return nil, err
	}
	published := []string{domain.WishStatusPublished, domain.WishStatusFulfilled}
	if err := db.Model(&models.Wish{}).Where("status IN ?", published).Count(&t.PublishedWishes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Wish{}).Where("status = ?", domain.WishStatusFulfilled).Count(&t.FulfilledWishes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Donation{}).Count(&t.DonationCount).Error; err != nil {
		return nil, err
	}
	var rows []struct {
		Currency string
		Total    int64
	}
	err := db.Model(&models.Donation{}).
		Select("currency, SUM(amount_cents) AS total").
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		t.RaisedByCurrency[row.Currency] = row.Total
	}
	return t, nil
}
