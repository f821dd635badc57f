package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecologic-brindes/ecologic-backend/internal/sales/pricing"
	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, code, name, description, price, cost, image0, image1, image2, variations, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM ecologic_products_site WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM ecologic_products_site WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	where := ""
	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += where + ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM ecologic_products_site WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var description, image0, image1, image2 *string
	var variations []byte
	err := row.Scan(&p.ID, &p.Code, &p.Name, &description, &p.Price, &p.Cost,
		&image0, &image1, &image2, &variations, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if description != nil {
		p.Description = *description
	}
	if image0 != nil {
		p.Image0 = *image0
	}
	if image1 != nil {
		p.Image1 = *image1
	}
	if image2 != nil {
		p.Image2 = *image2
	}
	if len(variations) > 0 {
		// Legacy rows hold anything from null to malformed JSON here; a bad
		// blob must not hide the product from listings.
		var parsed []pricing.Variation
		if err := json.Unmarshal(variations, &parsed); err == nil {
			p.Variations = parsed
		}
	}
	return p, nil
}
