package quotes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecologic-brindes/ecologic-backend/internal/platform/db"
	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*QuoteRequest, error)
	List(ctx context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error)
	Create(ctx context.Context, q QuoteRequest) (int64, error)
	InsertLine(ctx context.Context, line QuoteLine) (int64, error)
	DeleteLines(ctx context.Context, quoteID int64) error
	UpdateStatus(ctx context.Context, id int64, status Status, numero *string) error
	AssignConsultant(ctx context.Context, id, consultantID int64) error
	Touch(ctx context.Context, id int64) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const headerColumns = `id, numero, client_id, consultant_id, status, duplicada_de, observacoes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*QuoteRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+headerColumns+` FROM solicitacao_orcamentos WHERE id = $1`, id)
	q, err := scanHeader(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	return q, nil
}

func (r *repository) List(ctx context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if req.ConsultantID != nil {
		argCount++
		where += ` AND s.consultant_id = $` + strconv.Itoa(argCount)
		args = append(args, *req.ConsultantID)
	}
	if req.ClientID != nil {
		argCount++
		where += ` AND s.client_id = $` + strconv.Itoa(argCount)
		args = append(args, *req.ClientID)
	}
	if req.Status != nil {
		argCount++
		where += ` AND s.status = $` + strconv.Itoa(argCount)
		args = append(args, string(*req.Status))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM solicitacao_orcamentos s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argCount++
	limitPH := strconv.Itoa(argCount)
	argCount++
	offsetPH := strconv.Itoa(argCount)
	args = append(args, req.Limit, req.Offset)

	query := `
		SELECT s.id, s.numero, s.client_id, s.consultant_id, s.status, s.duplicada_de,
		       s.observacoes, s.created_at, s.updated_at,
		       c.name AS client_name, c.email AS client_email
		FROM solicitacao_orcamentos s
		JOIN usuarios_clientes c ON s.client_id = c.id` + where + `
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $` + limitPH + ` OFFSET $` + offsetPH

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []QuoteWithClient
	for rows.Next() {
		var q QuoteWithClient
		var status string
		err := rows.Scan(&q.ID, &q.Numero, &q.ClientID, &q.ConsultantID, &status,
			&q.DuplicatedFrom, &q.Notes, &q.CreatedAt, &q.UpdatedAt,
			&q.ClientName, &q.ClientEmail)
		if err != nil {
			return nil, 0, err
		}
		q.Status = Status(status)
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q QuoteRequest) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO solicitacao_orcamentos (numero, client_id, consultant_id, status, duplicada_de, observacoes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`, q.Numero, q.ClientID, q.ConsultantID, string(q.Status), q.DuplicatedFrom, q.Notes).Scan(&id)
	return id, err
}

func (r *repository) InsertLine(ctx context.Context, line QuoteLine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products_solicitacao (
			solicitacao_id, products_id,
			products_quantidade_01, products_quantidade_02, products_quantidade_03,
			color, customizations, gravacao, personalizacao, info,
			custo, preco_unitario, valor_unitario, fator,
			valor_qtd01, valor_qtd02, valor_qtd03,
			observacoes, cor_selecionada, imagem_variacao, img_ref_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING id
	`, line.SolicitacaoID, line.ProductID,
		line.Quantity1, line.Quantity2, line.Quantity3,
		line.Color, line.Customizations, line.Engraving, line.Personalization, line.Info,
		line.Cost, line.UnitPrice, line.UnitValue, line.Factor,
		line.TierPrice1, line.TierPrice2, line.TierPrice3,
		line.Notes, line.SelectedColor, line.VariationImage, line.ImageRefURL).Scan(&id)
	return id, err
}

func (r *repository) DeleteLines(ctx context.Context, quoteID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products_solicitacao WHERE solicitacao_id = $1`, quoteID)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, numero *string) error {
	query := `UPDATE solicitacao_orcamentos SET status = $1, updated_at = NOW()`
	args := []interface{}{string(status)}
	if numero != nil {
		query += `, numero = $2 WHERE id = $3`
		args = append(args, *numero, id)
	} else {
		query += ` WHERE id = $2`
		args = append(args, id)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AssignConsultant(ctx context.Context, id, consultantID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE solicitacao_orcamentos SET consultant_id = $1, updated_at = NOW() WHERE id = $2`,
		consultantID, id)
	return err
}

func (r *repository) Touch(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE solicitacao_orcamentos SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

// GenerateNumber allocates the next quote number for the month via an upsert
// on document_sequences, so concurrent generations never collide.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "ORC", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORC-%s-%04d", date.Format("0601"), seq), nil
}

func (r *repository) getLines(ctx context.Context, quoteID int64) ([]QuoteLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, solicitacao_id, products_id,
		       products_quantidade_01, products_quantidade_02, products_quantidade_03,
		       color, customizations, gravacao, personalizacao, info,
		       custo, preco_unitario, valor_unitario, fator,
		       valor_qtd01, valor_qtd02, valor_qtd03,
		       observacoes, cor_selecionada, imagem_variacao, img_ref_url
		FROM products_solicitacao
		WHERE solicitacao_id = $1
		ORDER BY id ASC
	`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []QuoteLine
	for rows.Next() {
		var l QuoteLine
		err := rows.Scan(&l.ID, &l.SolicitacaoID, &l.ProductID,
			&l.Quantity1, &l.Quantity2, &l.Quantity3,
			&l.Color, &l.Customizations, &l.Engraving, &l.Personalization, &l.Info,
			&l.Cost, &l.UnitPrice, &l.UnitValue, &l.Factor,
			&l.TierPrice1, &l.TierPrice2, &l.TierPrice3,
			&l.Notes, &l.SelectedColor, &l.VariationImage, &l.ImageRefURL)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanHeader(row pgx.Row) (*QuoteRequest, error) {
	var q QuoteRequest
	var status string
	err := row.Scan(&q.ID, &q.Numero, &q.ClientID, &q.ConsultantID, &status,
		&q.DuplicatedFrom, &q.Notes, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.Status = Status(status)
	return &q, nil
}
