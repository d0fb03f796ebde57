//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
)

func offerInput(name string) model.OfferInput {
	return model.OfferInput{
		Name:         name,
		PriceExclTax: decimal.RequireFromString("15"),
		Recurrence:   model.RecurrenceMonthly,
		DataCapGB:    20,
	}
}

func TestOfferUseCase_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newMemOfferRepo()
	uc := NewOfferUseCase(repo, NewMockTxManager(), newTestLogger())

	o, err := uc.Create(ctx, offerInput("Data 20"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if o.ID == "" {
		t.Fatal("expected ID to be assigned")
	}
	if !o.PriceInclTax.Equal(decimal.RequireFromString("18")) {
		t.Errorf("expected priceTTC 18, got %s", o.PriceInclTax)
	}

	got, err := uc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Data 20" {
		t.Errorf("expected name %q, got %q", "Data 20", got.Name)
	}

	if _, err := uc.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.Create(ctx, model.OfferInput{Name: "broken"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOfferUseCase_UpdateRunsInTx(t *testing.T) {
	ctx := context.Background()
	repo := newMemOfferRepo()
	tm := NewMockTxManager()
	txCalls := 0
	tm.WithTxFunc = func(ctx context.Context, opt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
		txCalls++
		return fn(ctx, nil)
	}
	uc := NewOfferUseCase(repo, tm, newTestLogger())

	o, _ := uc.Create(ctx, offerInput("Data 20"))
	in := offerInput("Data 25")
	in.IsArchived = true
	updated, err := uc.Update(ctx, o.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if txCalls != 1 {
		t.Errorf("expected update to run in one transaction, got %d", txCalls)
	}
	if updated.Name != "Data 25" || !updated.IsArchived || updated.ID != o.ID {
		t.Errorf("unexpected update result %+v", updated)
	}

	list, err := uc.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("archived offers must not be listed, got %d", len(list))
	}

	if _, err := uc.Update(ctx, "missing", in); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOfferUseCase_ListFeaturedAndDelete(t *testing.T) {
	ctx := context.Background()
	uc := NewOfferUseCase(newMemOfferRepo(), NewMockTxManager(), newTestLogger())

	plain, _ := uc.Create(ctx, offerInput("plain"))
	featured := offerInput("featured")
	featured.IsFeatured = true
	if _, err := uc.Create(ctx, featured); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, _ := uc.List(ctx, false)
	onlyFeatured, _ := uc.List(ctx, true)
	if len(all) != 2 || len(onlyFeatured) != 1 || onlyFeatured[0].Name != "featured" {
		t.Fatalf("unexpected lists: all=%d featured=%d", len(all), len(onlyFeatured))
	}

	if err := uc.Delete(ctx, plain.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := uc.Delete(ctx, plain.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := uc.Delete(ctx, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
