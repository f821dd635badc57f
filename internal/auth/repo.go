package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Consultant, error)
	Get(ctx context.Context, id int64) (*Consultant, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const consultantColumns = `id, name, email, password_hash, is_active, created_at, updated_at`

func (r *repository) FindByEmail(ctx context.Context, email string) (*Consultant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+consultantColumns+` FROM consultores WHERE lower(email) = lower($1)`, email)
	return scanConsultant(row)
}

func (r *repository) Get(ctx context.Context, id int64) (*Consultant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+consultantColumns+` FROM consultores WHERE id = $1`, id)
	return scanConsultant(row)
}

func scanConsultant(row pgx.Row) (*Consultant, error) {
	var c Consultant
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
