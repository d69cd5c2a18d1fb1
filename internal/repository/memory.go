package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"wishwell/internal/domain"
	"wishwell/internal/models"
)

// MemLedger is an in-memory ledger with the same atomicity contract as
// the database-backed one: every operation, including the Execute*
// units, runs under one lock. Used by tests and by development setups
// without a database.
type MemLedger struct {
	mu        sync.Mutex
	wishes    map[string]models.Wish
	intents   map[string]models.PaymentIntent
	donations map[string]models.Donation
	seq       int64
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		wishes:    map[string]models.Wish{},
		intents:   map[string]models.PaymentIntent{},
		donations: map[string]models.Donation{},
	}
}

func (m *MemLedger) CreateWish(ctx context.Context, w *models.Wish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if w.CreatedAt.IsZero() {
		// strictly increasing creation times keep newest-first ordering
		// deterministic even within one clock tick
		w.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Microsecond)
	}
	m.wishes[w.ID] = *w
	return nil
}

func (m *MemLedger) GetWish(ctx context.Context, id string) (*models.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := w
	return &out, nil
}

func (m *MemLedger) ListWishes(ctx context.Context, q models.WishQuery) ([]models.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Wish
	for _, w := range m.wishes {
		if !contains(q.States, w.Status) {
			continue
		}
		if q.Category != "" && w.Category != q.Category {
			continue
		}
		if q.Urgency != "" && w.Urgency != q.Urgency {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemLedger) PublishWish(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishes[id]
	if !ok || w.Status != domain.WishStatusAwaitingFee {
		return false, nil
	}
	w.Status = domain.WishStatusPublished
	m.wishes[id] = w
	return true, nil
}

func (m *MemLedger) CreateIntent(ctx context.Context, in *models.PaymentIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	m.intents[in.ID] = *in
	return nil
}

func (m *MemLedger) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := in
	return &out, nil
}

func (m *MemLedger) CancelIntent(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[id]
	if !ok {
		return false, nil
	}
	if in.Status != domain.IntentStatusCreated && in.Status != domain.IntentStatusAuthorized {
		return false, nil
	}
	in.Status = domain.IntentStatusCancelled
	m.intents[id] = in
	return true, nil
}

// claim mirrors the conditional UPDATE of the database ledger. Caller
// holds the lock.
func (m *MemLedger) claim(intentID, payerRef string) bool {
	in, ok := m.intents[intentID]
	if !ok {
		return false
	}
	if in.Status != domain.IntentStatusCreated && in.Status != domain.IntentStatusAuthorized {
		return false
	}
	now := time.Now()
	in.Status = domain.IntentStatusExecuted
	in.PayerRef = payerRef
	in.AppliedAt = &now
	m.intents[intentID] = in
	return true
}

func (m *MemLedger) ExecutePostingFee(ctx context.Context, intentID, payerRef, wishID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishes[wishID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if w.Status == domain.WishStatusDraft {
		return false, &domain.InvalidStateError{Entity: "wish", ID: w.ID, State: w.Status, Op: "publish"}
	}
	if !m.claim(intentID, payerRef) {
		return false, nil
	}
	if w.Status == domain.WishStatusAwaitingFee {
		w.Status = domain.WishStatusPublished
		m.wishes[wishID] = w
	}
	return true, nil
}

func (m *MemLedger) ExecuteDonation(ctx context.Context, intentID, payerRef string, d *models.Donation) (bool, *models.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishes[d.WishID]
	if !ok {
		return false, nil, domain.ErrNotFound
	}
	if !m.claim(intentID, payerRef) {
		return false, nil, nil
	}
	m.donations[d.ID] = *d
	w.DonationsReceivedCents += d.WishAmountCents
	w.DonorCount++
	w.FulfillmentPercentage = models.FulfillmentPct(w.DonationsReceivedCents, w.AmountNeededCents)
	if w.DonationsReceivedCents >= w.AmountNeededCents {
		w.Status = domain.WishStatusFulfilled
	}
	m.wishes[w.ID] = w
	out := w
	return true, &out, nil
}

func (m *MemLedger) ListDonations(ctx context.Context, wishID string) ([]models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Donation
	for _, d := range m.donations {
		if d.WishID == wishID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExecutedAt.After(out[j].ExecutedAt) })
	return out, nil
}

func (m *MemLedger) Totals(ctx context.Context) (*models.LedgerTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &models.LedgerTotals{RaisedByCurrency: map[string]int64{}}
	for _, w := range m.wishes {
		t.TotalWishes++
		if w.Status == domain.WishStatusPublished || w.Status == domain.WishStatusFulfilled {
			t.PublishedWishes++
		}
		if w.Status == domain.WishStatusFulfilled {
			t.FulfilledWishes++
		}
	}
	for _, d := range m.donations {
		t.DonationCount++
		t.RaisedByCurrency[d.Currency] += d.AmountCents
	}
	return t, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
