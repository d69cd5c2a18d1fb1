package models

// WishQuery filters and bounds a wish listing.
type WishQuery struct {
	States   []string
	Category string
	Urgency  string
	Limit    int
}

// LedgerTotals are the raw aggregates the statistics view is derived
// from. Raised sums are grouped by donation currency; normalization to
// the reporting currency happens in the aggregator.
type LedgerTotals struct {
	TotalWishes      int64
	PublishedWishes  int64
	FulfilledWishes  int64
	DonationCount    int64
	RaisedByCurrency map[string]int64
}
