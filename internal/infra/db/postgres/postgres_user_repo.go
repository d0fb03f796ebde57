package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const uniqueViolation = "23505"

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, email, name, surname, phone, address, vat_number, company_name, is_pro,
                   role, billing_customer_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7,$8,$9,$10,NULLIF($11,''),$12)
ON CONFLICT (id) DO UPDATE SET
  email=EXCLUDED.email, name=EXCLUDED.name, surname=EXCLUDED.surname, phone=EXCLUDED.phone,
  address=EXCLUDED.address, vat_number=EXCLUDED.vat_number, company_name=EXCLUDED.company_name,
  is_pro=EXCLUDED.is_pro, role=EXCLUDED.role,
  billing_customer_id=EXCLUDED.billing_customer_id;
`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	addr, err := json.Marshal(u.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	_, err = exec.Exec(ctx, q, u.ID, u.Email, u.Name, u.Surname, u.Phone, string(addr), u.VATNumber,
		u.CompanyName, u.IsPro, string(u.Role), u.BillingCustomerID, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, `WHERE id=$1`, id)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findOne(ctx, tx, `WHERE email=$1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *PostgresUserRepo) findOne(ctx context.Context, tx repository.Tx, where string, arg any) (*model.User, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	row := exec.QueryRow(ctx, `
SELECT id, email, name, surname, phone, address::text, vat_number, company_name, is_pro,
       role, COALESCE(billing_customer_id, ''), created_at
  FROM users `+where+`;`, arg)

	var (
		u    model.User
		addr string
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Surname, &u.Phone, &addr, &u.VATNumber,
		&u.CompanyName, &u.IsPro, &role, &u.BillingCustomerID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := json.Unmarshal([]byte(addr), &u.Address); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	u.Role = model.ParseRole(role)
	return &u, nil
}

func (r *PostgresUserRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := exec.Exec(ctx, `DELETE FROM users WHERE id=$1;`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
