package usecase

import (
	"context"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
	"sim-activation-portal/internal/infra/logging"
	"sim-activation-portal/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ OfferUseCase = (*offerUC)(nil)

// OfferUseCase manages the subscription offer catalog.
type OfferUseCase interface {
	List(ctx context.Context, featuredOnly bool) ([]*model.SubscriptionOffer, error)
	Get(ctx context.Context, id string) (*model.SubscriptionOffer, error)
	Create(ctx context.Context, in model.OfferInput) (*model.SubscriptionOffer, error)
	Update(ctx context.Context, id string, in model.OfferInput) (*model.SubscriptionOffer, error)
	Delete(ctx context.Context, id string) error
}

type offerUC struct {
	offers repository.OfferRepository
	tm     repository.TransactionManager
	log    *zerolog.Logger
}

func NewOfferUseCase(offers repository.OfferRepository, tm repository.TransactionManager, logger *zerolog.Logger) *offerUC {
	return &offerUC{offers: offers, tm: tm, log: logger}
}

func (u *offerUC) List(ctx context.Context, featuredOnly bool) ([]*model.SubscriptionOffer, error) {
	defer logging.TraceDuration(u.log, "OfferUC.List")()
	return u.offers.ListActive(ctx, repository.NoTX, featuredOnly)
}

func (u *offerUC) Get(ctx context.Context, id string) (*model.SubscriptionOffer, error) {
	defer logging.TraceDuration(u.log, "OfferUC.Get")()
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.offers.FindByID(ctx, repository.NoTX, id)
}

func (u *offerUC) Create(ctx context.Context, in model.OfferInput) (*model.SubscriptionOffer, error) {
	defer logging.TraceDuration(u.log, "OfferUC.Create")()

	o, err := model.NewSubscriptionOffer(in)
	if err != nil {
		return nil, err
	}
	if err := u.offers.Save(ctx, repository.NoTX, o); err != nil {
		logging.With(ctx, u.log).Error().Err(err).Msg("failed to create offer")
		return nil, err
	}
	metrics.IncOfferMutation("create")
	return o, nil
}

func (u *offerUC) Update(ctx context.Context, id string, in model.OfferInput) (*model.SubscriptionOffer, error) {
	defer logging.TraceDuration(u.log, "OfferUC.Update")()
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}

	var updated *model.SubscriptionOffer
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		o, err := u.offers.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := o.Apply(in); err != nil {
			return err
		}
		if err := u.offers.Save(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncOfferMutation("update")
	return updated, nil
}

func (u *offerUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "OfferUC.Delete")()
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.offers.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	metrics.IncOfferMutation("delete")
	return nil
}
