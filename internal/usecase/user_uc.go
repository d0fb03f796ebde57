package usecase

import (
	"context"
	"errors"
	"strings"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
	"sim-activation-portal/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes the account operations used by the web layer and seeding.
type UserUseCase interface {
	RegisterOrFetch(ctx context.Context, email, name string, role model.Role) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	SetBillingCustomer(ctx context.Context, id, customerID string) error
	UpdateProfile(ctx context.Context, id string, in model.ProfileInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{
		users: users,
		tm:    tm,
		log:   logger,
	}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, email, name string, role model.Role) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var user *model.User
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.users.FindByEmail(ctx, tx, strings.ToLower(strings.TrimSpace(email)))
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		nu, err := model.NewUser("", email, name, role)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			u.log.Error().Err(err).Msg("failed to create user")
			return err
		}
		user = nu
		return nil
	})

	return user, err
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.users.FindByID(ctx, repository.NoTX, id)
}

// SetBillingCustomer records the payment provider reference once billing
// details exist, which lifts the onboarding gate.
func (u *userUC) SetBillingCustomer(ctx context.Context, id, customerID string) error {
	defer logging.TraceDuration(u.log, "UserUC.SetBillingCustomer")()
	if id == "" || strings.TrimSpace(customerID) == "" {
		return domain.ErrInvalidArgument
	}
	return u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		usr.BillingCustomerID = strings.TrimSpace(customerID)
		return u.users.Save(ctx, tx, usr)
	})
}

func (u *userUC) UpdateProfile(ctx context.Context, id string, in model.ProfileInput) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.UpdateProfile")()
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	var updated *model.User
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := usr.UpdateProfile(in); err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, usr); err != nil {
			return err
		}
		updated = usr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the account. Offers are not owned by users, so nothing
// else is touched.
func (u *userUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "UserUC.Delete")()
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.users.Delete(ctx, repository.NoTX, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, u.log).Error().Err(err).Msg("failed to delete user")
		}
		return err
	}
	logging.With(ctx, u.log).Info().Str("user_id", id).Msg("user deleted")
	return nil
}
