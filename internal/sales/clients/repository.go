package clients

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Client, error)
	GetByEmail(ctx context.Context, email string) (Client, error)
	Create(ctx context.Context, c Client) (Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const clientColumns = `id, name, email, phone, company, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM usuarios_clientes WHERE id = $1`, id)
	return scanClient(row)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (Client, error) {
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM usuarios_clientes WHERE lower(email) = lower($1)`, email)
	return scanClient(row)
}

func (r *repository) Create(ctx context.Context, c Client) (Client, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO usuarios_clientes (name, email, phone, company, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, c.Name, strings.TrimSpace(c.Email), c.Phone, c.Company).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	where := ""
	args := []interface{}{}
	argCount := 0
	if req.Search != "" {
		argCount++
		ph := strconv.Itoa(argCount)
		where = ` WHERE (name ILIKE $` + ph + ` OR email ILIKE $` + ph + `)`
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios_clientes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + clientColumns + ` FROM usuarios_clientes` + where + ` ORDER BY name ASC`
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, req.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	var phone, company *string
	err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &company, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, shared.ErrNotFound
	}
	if err != nil {
		return Client{}, err
	}
	if phone != nil {
		c.Phone = *phone
	}
	if company != nil {
		c.Company = *company
	}
	return c, nil
}
