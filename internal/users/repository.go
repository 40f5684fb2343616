package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/shared"
)

type Repository interface {
	CreateUser(ctx context.Context, user User) (int64, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetCompany(ctx context.Context, id int64) (*Company, error)
	UpdateCompany(ctx context.Context, id int64, updates map[string]interface{}) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CreateUser(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (company_id, email, full_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`, u.CompanyID, u.Email, u.FullName, u.PasswordHash).Scan(&id)
	return id, err
}

func (r *repository) GetUser(ctx context.Context, id int64) (*User, error) {
	return r.getUser(ctx, `WHERE id = $1`, id)
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *repository) getUser(ctx context.Context, where string, arg interface{}) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, email, full_name, password_hash, created_at, updated_at
		FROM users `+where, arg).Scan(
		&u.ID, &u.CompanyID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetCompany(ctx context.Context, id int64) (*Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, address, city, postal_code, country_code, vat_number, created_at, updated_at
		FROM companies WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Address, &c.City, &c.PostalCode, &c.CountryCode, &c.VATNumber,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) UpdateCompany(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE companies SET updated_at = NOW()"
	var args []interface{}
	argPos := 1
	for _, column := range []string{"name", "email", "address", "city", "postal_code", "country_code", "vat_number"} {
		if v, ok := updates[column]; ok {
			query += fmt.Sprintf(", %s = $%d", column, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: company %d", shared.ErrNotFound, id)
	}
	return nil
}
