package domain

// Wish lifecycle states.
const (
	WishStatusDraft       = "DRAFT"
	WishStatusAwaitingFee = "AWAITING_FEE"
	WishStatusPublished   = "PUBLISHED"
	WishStatusFulfilled   = "FULFILLED"
)

// Payment intent lifecycle states.
const (
	IntentStatusCreated    = "CREATED"
	IntentStatusAuthorized = "AUTHORIZED"
	IntentStatusExecuted   = "EXECUTED"
	IntentStatusCancelled  = "CANCELLED"
)

// Payment purposes.
const (
	PurposePostingFee = "POSTING_FEE"
	PurposeDonation   = "DONATION"
)

// Urgency levels.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// AllowedCurrencies are the currencies accepted for wishes and donations.
var AllowedCurrencies = []string{"EUR", "USD", "GBP", "CAD", "AUD"}

// Categories is the known category set. New categories are added here;
// wishes submitted with an unknown category are rejected.
var Categories = []string{
	"medical",
	"education",
	"family",
	"emergency",
	"travel",
	"community",
	"creative",
	"other",
}

func ValidCurrency(code string) bool {
	for _, c := range AllowedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func ValidUrgency(u string) bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}
