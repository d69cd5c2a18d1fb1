package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"wishwell/config"
	"wishwell/internal/domain"
	"wishwell/internal/repository"
)

type captureHub struct {
	mu       sync.Mutex
	payloads []interface{}
}

func (h *captureHub) BroadcastAll(payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payloads = append(h.payloads, payload)
}

func (h *captureHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.payloads)
}

func TestStatisticsSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	// One fee-pending wish, one published, one fulfilled by two donations.
	if _, err := env.wishes.Submit(ctx, validWishInput()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	submitAndPublish(t, env)
	fulfilledID := submitAndPublish(t, env)

	for _, cents := range []int64{4000, 6000} {
		res := openDonation(t, env, fulfilledID, cents, "EUR")
		if _, err := env.payments.ExecuteAuthorization(ctx, res.Intent.ID, "PAYER"); err != nil {
			t.Fatalf("execute donation: %v", err)
		}
	}
	// A USD donation to the still-open wish, normalized at 0.92.
	openWishes, _ := env.wishes.ListPublished(ctx, WishFilter{})
	var openID string
	for _, w := range openWishes {
		if w.Status == domain.WishStatusPublished {
			openID = w.ID
		}
	}
	res := openDonation(t, env, openID, 1000, "USD")
	if _, err := env.payments.ExecuteAuthorization(ctx, res.Intent.ID, "PAYER"); err != nil {
		t.Fatalf("execute usd donation: %v", err)
	}

	snap, err := env.stats.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.TotalWishes != 3 {
		t.Errorf("expected 3 total wishes, got %d", snap.TotalWishes)
	}
	if snap.PublishedWishes != 2 {
		t.Errorf("expected 2 visible wishes, got %d", snap.PublishedWishes)
	}
	if snap.FulfilledWishes != 1 {
		t.Errorf("expected 1 fulfilled wish, got %d", snap.FulfilledWishes)
	}
	if snap.DonationCount != 3 {
		t.Errorf("expected 3 donations, got %d", snap.DonationCount)
	}
	// 100 EUR + 10 USD * 0.92 = 109.20 EUR.
	if snap.TotalRaisedCents != 10920 {
		t.Errorf("expected 10920 cents raised, got %d", snap.TotalRaisedCents)
	}
	if snap.SuccessRate != 50 {
		t.Errorf("expected 50%% success rate, got %v", snap.SuccessRate)
	}
	if snap.PostingFeeCents != 200 || snap.ReportingCcy != "EUR" {
		t.Errorf("snapshot misses configuration values: %+v", snap)
	}
}

func TestStatisticsCacheAndRefresh(t *testing.T) {
	ctx := context.Background()
	ledger := repository.NewMemLedger()
	funding := testFunding()
	hub := &captureHub{}
	stats := NewStatsService(ledger, funding, &config.StatsConfig{RefreshInterval: time.Hour}, hub)
	wishes := NewWishService(ledger, funding)

	first, err := stats.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if first.TotalWishes != 0 {
		t.Fatalf("expected empty ledger, got %d wishes", first.TotalWishes)
	}

	if _, err := wishes.Submit(ctx, validWishInput()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Within the interval the cached snapshot is served; staleness up
	// to one interval is acceptable.
	cached, _ := stats.Snapshot(ctx)
	if cached.TotalWishes != 0 {
		t.Errorf("expected stale cached snapshot, got %d wishes", cached.TotalWishes)
	}

	stats.Refresh(ctx)
	if hub.count() != 1 {
		t.Errorf("expected one broadcast after refresh, got %d", hub.count())
	}
	fresh, _ := stats.Snapshot(ctx)
	if fresh.TotalWishes != 1 {
		t.Errorf("expected refreshed snapshot, got %d wishes", fresh.TotalWishes)
	}
}
