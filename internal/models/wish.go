package models

import (
	"time"
)

type Wish struct {
	ID                     string    `gorm:"primaryKey;size:36" json:"id"`
	Title                  string    `gorm:"size:255;not null" json:"title"`
	Description            string    `gorm:"type:text;not null" json:"description"`
	Category               string    `gorm:"size:50;not null;index" json:"category"`
	Urgency                string    `gorm:"size:10;not null;index" json:"urgency"`
	Currency               string    `gorm:"size:3;not null" json:"currency"`
	AmountNeededCents      int64     `gorm:"not null" json:"amount_needed_cents"`
	CreatorName            string    `gorm:"size:100;not null" json:"creator_name"`
	CreatorEmail           string    `gorm:"size:255;not null" json:"-"`
	CreatorPaypal          string    `gorm:"size:255" json:"-"`
	PhotoURL               string    `gorm:"size:512" json:"photo_url,omitempty"`
	Status                 string    `gorm:"size:20;not null;index" json:"status"` // DRAFT, AWAITING_FEE, PUBLISHED, FULFILLED
	DonationsReceivedCents int64     `gorm:"not null;default:0" json:"donations_received_cents"`
	DonorCount             int64     `gorm:"not null;default:0" json:"donor_count"`
	FulfillmentPercentage  float64   `gorm:"not null;default:0" json:"fulfillment_percentage"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (Wish) TableName() string {
	return "wishes"
}

// FulfillmentPct computes min(100, received/needed*100) for the given
// aggregate values. Stored on the wish after every applied donation.
func FulfillmentPct(receivedCents, neededCents int64) float64 {
	if neededCents <= 0 {
		return 0
	}
	pct := float64(receivedCents) / float64(neededCents) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
