package service

import (
	"context"
	"errors"
	"testing"

	"wishwell/internal/domain"
)

func TestSubmitWish(t *testing.T) {
	ctx := context.Background()

	t.Run("valid input creates a wish awaiting its posting fee", func(t *testing.T) {
		env := newTestEnv()
		w, err := env.wishes.Submit(ctx, validWishInput())
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if w.ID == "" {
			t.Error("expected generated wish id")
		}
		if w.Status != domain.WishStatusAwaitingFee {
			t.Errorf("expected status %s, got %s", domain.WishStatusAwaitingFee, w.Status)
		}
		if w.DonationsReceivedCents != 0 || w.DonorCount != 0 || w.FulfillmentPercentage != 0 {
			t.Errorf("new wish must start with zeroed aggregates, got %+v", w)
		}
	})

	t.Run("all violated fields are reported at once", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.wishes.Submit(ctx, SubmitWishInput{
			Currency: "XXX",
			Category: "unicorns",
			Urgency:  "now",
		})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := []string{"title", "description", "amount_needed", "currency", "category", "urgency", "creator_name", "creator_email"}
		got := map[string]bool{}
		for _, f := range verr.Fields {
			got[f.Field] = true
		}
		for _, field := range want {
			if !got[field] {
				t.Errorf("expected violation for %q, fields: %v", field, verr.Fields)
			}
		}
	})

	t.Run("bad email alone is enough to reject", func(t *testing.T) {
		env := newTestEnv()
		in := validWishInput()
		in.CreatorEmail = "not-an-email"
		_, err := env.wishes.Submit(ctx, in)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(verr.Fields) != 1 || verr.Fields[0].Field != "creator_email" {
			t.Errorf("expected single creator_email violation, got %v", verr.Fields)
		}
	})
}

func TestMarkPublished(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	w, err := env.wishes.Submit(ctx, validWishInput())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := env.wishes.MarkPublished(ctx, w.ID); err != nil {
		t.Fatalf("MarkPublished failed: %v", err)
	}
	got, _ := env.wishes.Get(ctx, w.ID)
	if got.Status != domain.WishStatusPublished {
		t.Fatalf("expected PUBLISHED, got %s", got.Status)
	}

	// Publishing again is a no-op, not an error.
	if err := env.wishes.MarkPublished(ctx, w.ID); err != nil {
		t.Errorf("second MarkPublished should be a no-op, got %v", err)
	}

	if err := env.wishes.MarkPublished(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown wish, got %v", err)
	}
}

func TestListPublishedVisibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	hidden, _ := env.wishes.Submit(ctx, validWishInput())

	in := validWishInput()
	in.Title = "Laptop for night classes"
	in.Category = "education"
	in.Urgency = "high"
	visible, _ := env.wishes.Submit(ctx, in)
	if err := env.wishes.MarkPublished(ctx, visible.ID); err != nil {
		t.Fatalf("MarkPublished failed: %v", err)
	}

	wishes, err := env.wishes.ListPublished(ctx, WishFilter{})
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(wishes) != 1 || wishes[0].ID != visible.ID {
		t.Fatalf("expected only the published wish, got %d wishes", len(wishes))
	}

	// A fee-pending wish must not leak through the public getter either.
	if _, err := env.wishes.GetPublished(ctx, hidden.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unpublished wish, got %v", err)
	}
	if _, err := env.wishes.Get(ctx, hidden.ID); err != nil {
		t.Errorf("internal Get should return any state, got %v", err)
	}
}

func TestListPublishedFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	mk := func(title, category, urgency string) string {
		in := validWishInput()
		in.Title = title
		in.Category = category
		in.Urgency = urgency
		w, err := env.wishes.Submit(ctx, in)
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if err := env.wishes.MarkPublished(ctx, w.ID); err != nil {
			t.Fatalf("MarkPublished failed: %v", err)
		}
		return w.ID
	}

	first := mk("oldest", "medical", "high")
	mk("middle", "education", "low")
	last := mk("newest", "medical", "low")

	all, err := env.wishes.ListPublished(ctx, WishFilter{})
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 wishes, got %d", len(all))
	}
	if all[0].ID != last || all[2].ID != first {
		t.Errorf("expected newest-first ordering, got %s ... %s", all[0].Title, all[2].Title)
	}

	medical, _ := env.wishes.ListPublished(ctx, WishFilter{Category: "medical"})
	if len(medical) != 2 {
		t.Errorf("expected 2 medical wishes, got %d", len(medical))
	}
	urgent, _ := env.wishes.ListPublished(ctx, WishFilter{Category: "medical", Urgency: "high"})
	if len(urgent) != 1 || urgent[0].ID != first {
		t.Errorf("expected the single urgent medical wish, got %d", len(urgent))
	}

	limited, _ := env.wishes.ListPublished(ctx, WishFilter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}
