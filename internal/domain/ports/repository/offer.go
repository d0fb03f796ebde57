package repository

import (
	"context"

	"sim-activation-portal/internal/domain/model"
)

// OfferRepository is the port for the subscription offer catalog.
type OfferRepository interface {
	Save(ctx context.Context, tx Tx, o *model.SubscriptionOffer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.SubscriptionOffer, error)
	// ListActive returns non-archived offers, newest first.
	ListActive(ctx context.Context, tx Tx, featuredOnly bool) ([]*model.SubscriptionOffer, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
