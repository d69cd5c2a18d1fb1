package service

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"wishwell/config"
	"wishwell/internal/models"
)

// Broadcaster pushes statistics snapshots to connected listeners.
// Implemented by the WebSocket hub; nil disables pushing.
type Broadcaster interface {
	BroadcastAll(payload interface{})
}

// StatsService derives GlobalStatistics from the ledger. Snapshots are
// cached for the configured interval; statistics are informational, so
// staleness up to one interval is acceptable.
type StatsService struct {
	ledger  Ledger
	funding *config.FundingConfig
	ttl     time.Duration
	hub     Broadcaster

	mu        sync.Mutex
	cached    *models.GlobalStatistics
	fetchedAt time.Time
}

func NewStatsService(ledger Ledger, funding *config.FundingConfig, cfg *config.StatsConfig, hub Broadcaster) *StatsService {
	return &StatsService{ledger: ledger, funding: funding, ttl: cfg.RefreshInterval, hub: hub}
}

// Snapshot returns the cached statistics, recomputing when stale.
func (s *StatsService) Snapshot(ctx context.Context) (*models.GlobalStatistics, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		snap := *s.cached
		s.mu.Unlock()
		return &snap, nil
	}
	s.mu.Unlock()
	return s.recompute(ctx)
}

// Refresh recomputes immediately after a mutating event and pushes the
// fresh snapshot to listeners. Failures are logged, never propagated:
// statistics are not authoritative for any invariant.
func (s *StatsService) Refresh(ctx context.Context) {
	snap, err := s.recompute(ctx)
	if err != nil {
		log.Printf("[STATS] refresh failed: %v", err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(map[string]interface{}{"type": "statistics", "statistics": snap})
	}
}

func (s *StatsService) recompute(ctx context.Context) (*models.GlobalStatistics, error) {
	totals, err := s.ledger.Totals(ctx)
	if err != nil {
		return nil, err
	}
	reporting := s.funding.ReportingCcy
	var raised int64
	for ccy, cents := range totals.RaisedByCurrency {
		rate := 1.0
		if rf, ok := s.funding.Rates[ccy]; ok {
			if rt, ok := s.funding.Rates[reporting]; ok && rt != 0 {
				rate = rf / rt
			}
		}
		raised += int64(math.Round(float64(cents) * rate))
	}
	successRate := 0.0
	if totals.PublishedWishes > 0 {
		successRate = float64(totals.FulfilledWishes) / float64(totals.PublishedWishes) * 100
	}
	snap := &models.GlobalStatistics{
		TotalWishes:      totals.TotalWishes,
		PublishedWishes:  totals.PublishedWishes,
		FulfilledWishes:  totals.FulfilledWishes,
		TotalRaisedCents: raised,
		ReportingCcy:     reporting,
		DonationCount:    totals.DonationCount,
		SuccessRate:      successRate,
		PostingFeeCents:  s.funding.PostingFeeCents,
		RefreshedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Lock()
	s.cached = snap
	s.fetchedAt = time.Now()
	out := *snap
	s.mu.Unlock()
	return &out, nil
}
