//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
)

func newOffer(t *testing.T, name string, featured bool) *model.SubscriptionOffer {
	t.Helper()
	o, err := model.NewSubscriptionOffer(model.OfferInput{
		Name:          name,
		PriceExclTax:  decimal.RequireFromString("9.99"),
		ActivationFee: decimal.RequireFromString("5"),
		Recurrence:    model.RecurrenceMonthly,
		DataCapGB:     10,
		IsFeatured:    featured,
	})
	if err != nil {
		t.Fatalf("NewSubscriptionOffer: %v", err)
	}
	return o
}

func TestOfferRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	repo := NewPostgresOfferRepo(testPool)
	ctx := context.Background()

	t.Run("should round-trip prices exactly", func(t *testing.T) {
		cleanup(t)
		o := newOffer(t, "Europe 10GB", false)
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := repo.FindByID(ctx, nil, o.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if !got.PriceExclTax.Equal(o.PriceExclTax) || !got.PriceInclTax.Equal(decimal.RequireFromString("11.99")) {
			t.Errorf("prices changed: ht=%s ttc=%s", got.PriceExclTax, got.PriceInclTax)
		}
		if got.Recurrence != model.RecurrenceMonthly || got.DataCapGB != 10 {
			t.Errorf("fields not persisted: %+v", got)
		}
	})

	t.Run("ListActive excludes archived and filters featured", func(t *testing.T) {
		cleanup(t)
		older := newOffer(t, "Older", true)
		older.CreatedAt = time.Now().Add(-time.Hour).UTC()
		newer := newOffer(t, "Newer", false)
		archived := newOffer(t, "Archived", true)
		archived.IsArchived = true
		for _, o := range []*model.SubscriptionOffer{older, newer, archived} {
			if err := repo.Save(ctx, nil, o); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		all, err := repo.ListActive(ctx, nil, false)
		if err != nil {
			t.Fatalf("ListActive: %v", err)
		}
		if len(all) != 2 || all[0].ID != newer.ID || all[1].ID != older.ID {
			t.Errorf("expected [newer older], got %d offers", len(all))
		}
		featured, _ := repo.ListActive(ctx, nil, true)
		if len(featured) != 1 || featured[0].ID != older.ID {
			t.Errorf("expected only the featured active offer, got %d", len(featured))
		}
	})

	t.Run("Delete reports missing rows", func(t *testing.T) {
		cleanup(t)
		o := newOffer(t, "Gone", false)
		_ = repo.Save(ctx, nil, o)
		if err := repo.Delete(ctx, nil, o.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := repo.Delete(ctx, nil, o.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.FindByID(ctx, nil, o.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rolled back writes are not visible", func(t *testing.T) {
		cleanup(t)
		tm := NewTxManager(testPool)
		o := newOffer(t, "Rolled back", false)
		boom := errors.New("abort")
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			if err := repo.Save(ctx, tx, o); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected abort error, got %v", err)
		}
		if _, err := repo.FindByID(ctx, nil, o.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("offer leaked out of rolled back tx: %v", err)
		}
	})
}
