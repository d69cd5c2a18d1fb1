package models

import (
	"time"
)

// Donation is materialized once per executed DONATION intent. Rows are
// immutable after creation.
type Donation struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	WishID          string    `gorm:"size:36;not null;index" json:"wish_id"`
	IntentID        string    `gorm:"size:36;not null;uniqueIndex" json:"intent_id"`
	AmountCents     int64     `gorm:"not null" json:"amount_cents"`
	Currency        string    `gorm:"size:3;not null" json:"currency"`
	WishAmountCents int64     `gorm:"not null" json:"wish_amount_cents"` // converted into the wish currency
	FxRate          float64   `gorm:"not null;default:1" json:"fx_rate"`
	ExecutedAt      time.Time `json:"executed_at"`
}

func (Donation) TableName() string {
	return "donations"
}

// GlobalStatistics is a derived view over the ledger; it is never a
// source of truth for any invariant.
type GlobalStatistics struct {
	TotalWishes      int64   `json:"total_wishes"`
	PublishedWishes  int64   `json:"published_wishes"`
	FulfilledWishes  int64   `json:"fulfilled_wishes"`
	TotalRaisedCents int64   `json:"total_raised_cents"`
	ReportingCcy     string  `json:"reporting_currency"`
	DonationCount    int64   `json:"donation_count"`
	SuccessRate      float64 `json:"success_rate"`
	PostingFeeCents  int64   `json:"posting_fee_cents"`
	RefreshedAt      string  `json:"refreshed_at"`
}
