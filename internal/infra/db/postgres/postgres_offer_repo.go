package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
)

var _ repository.OfferRepository = (*PostgresOfferRepo)(nil)

type PostgresOfferRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOfferRepo(pool *pgxpool.Pool) *PostgresOfferRepo {
	return &PostgresOfferRepo{pool: pool}
}

// Prices travel as text so NUMERIC keeps its exact scale on both sides.
const offerColumns = `
id, name, description, product_specs,
price_ht::text, price_ttc::text, frais_activation::text,
recurrence, data_cap_gb, is_featured, is_archived, created_at, updated_at`

func (r *PostgresOfferRepo) Save(ctx context.Context, tx repository.Tx, o *model.SubscriptionOffer) error {
	const q = `
INSERT INTO subscription_offers (
  id, name, description, product_specs, price_ht, price_ttc, frais_activation,
  recurrence, data_cap_gb, is_featured, is_archived, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7::numeric,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  name=EXCLUDED.name, description=EXCLUDED.description, product_specs=EXCLUDED.product_specs,
  price_ht=EXCLUDED.price_ht, price_ttc=EXCLUDED.price_ttc, frais_activation=EXCLUDED.frais_activation,
  recurrence=EXCLUDED.recurrence, data_cap_gb=EXCLUDED.data_cap_gb,
  is_featured=EXCLUDED.is_featured, is_archived=EXCLUDED.is_archived, updated_at=EXCLUDED.updated_at;
`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = exec.Exec(ctx, q,
		o.ID, o.Name, o.Description, o.ProductSpecs,
		o.PriceExclTax.String(), o.PriceInclTax.String(), o.ActivationFee.String(),
		string(o.Recurrence), o.DataCapGB, o.IsFeatured, o.IsArchived, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save offer: %w", err)
	}
	return nil
}

func (r *PostgresOfferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionOffer, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	o, err := scanOffer(exec.QueryRow(ctx, `SELECT `+offerColumns+` FROM subscription_offers WHERE id=$1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find offer: %w", err)
	}
	return o, nil
}

func (r *PostgresOfferRepo) ListActive(ctx context.Context, tx repository.Tx, featuredOnly bool) ([]*model.SubscriptionOffer, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + offerColumns + ` FROM subscription_offers WHERE NOT is_archived`
	if featuredOnly {
		q += ` AND is_featured`
	}
	q += ` ORDER BY created_at DESC;`

	rows, err := exec.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	out := make([]*model.SubscriptionOffer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresOfferRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := exec.Exec(ctx, `DELETE FROM subscription_offers WHERE id=$1;`, id)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOffer(row pgx.Row) (*model.SubscriptionOffer, error) {
	var (
		o                 model.SubscriptionOffer
		ht, ttc, fee, rec string
	)
	if err := row.Scan(
		&o.ID, &o.Name, &o.Description, &o.ProductSpecs,
		&ht, &ttc, &fee,
		&rec, &o.DataCapGB, &o.IsFeatured, &o.IsArchived, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if o.PriceExclTax, err = decimal.NewFromString(ht); err != nil {
		return nil, err
	}
	if o.PriceInclTax, err = decimal.NewFromString(ttc); err != nil {
		return nil, err
	}
	if o.ActivationFee, err = decimal.NewFromString(fee); err != nil {
		return nil, err
	}
	o.Recurrence = model.Recurrence(rec)
	return &o, nil
}
