package proposals

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type Repository interface {
	Insert(ctx context.Context, p Proposal) (int64, error)
	LatestByQuote(ctx context.Context, quoteID int64) (*Proposal, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, p Proposal) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO propostas (solicitacao_id, numero, pdf_path, size_bytes, rendered_at, generated_by)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		RETURNING id
	`, p.QuoteID, p.Numero, p.PDFPath, p.SizeBytes, p.GeneratedBy).Scan(&id)
	return id, err
}

func (r *repository) LatestByQuote(ctx context.Context, quoteID int64) (*Proposal, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, solicitacao_id, numero, pdf_path, size_bytes, rendered_at, generated_by
		FROM propostas
		WHERE solicitacao_id = $1
		ORDER BY rendered_at DESC, id DESC
		LIMIT 1
	`, quoteID)

	var p Proposal
	err := row.Scan(&p.ID, &p.QuoteID, &p.Numero, &p.PDFPath, &p.SizeBytes, &p.RenderedAt, &p.GeneratedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
