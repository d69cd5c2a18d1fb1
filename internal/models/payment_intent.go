package models

import (
	"time"
)

type PaymentIntent struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Purpose     string     `gorm:"size:20;not null;index" json:"purpose"` // POSTING_FEE, DONATION
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Currency    string     `gorm:"size:3;not null" json:"currency"`
	WishID      string     `gorm:"size:36;not null;index" json:"wish_id"`
	Status      string     `gorm:"size:20;not null;index" json:"status"` // CREATED, AUTHORIZED, EXECUTED, CANCELLED
	ProviderRef string     `gorm:"size:255;uniqueIndex" json:"provider_ref"`
	PayerRef    string     `gorm:"size:255" json:"payer_ref,omitempty"`
	AppliedAt   *time.Time `json:"applied_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}
