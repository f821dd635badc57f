package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ecologic-brindes/ecologic-backend/internal/catalog"
	"github.com/ecologic-brindes/ecologic-backend/internal/catalog/imaging"
	"github.com/ecologic-brindes/ecologic-backend/internal/money"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/clients"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/pricing"
)

var (
	ErrInvalidStatus = errors.New("invalid status transition")
	ErrReadOnly      = errors.New("quote is no longer editable")
	ErrNoLines       = errors.New("quote has no line items")
)

// ProductSource supplies catalog records for line building.
type ProductSource interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// ClientSource resolves or creates the client behind a submission.
type ClientSource interface {
	EnsureExists(ctx context.Context, name, email, phone, company string) (clients.Client, error)
}

// Enqueuer schedules background work after a quote is generated.
type Enqueuer interface {
	EnqueueProposalRender(ctx context.Context, quoteID int64) error
}

type Service struct {
	logger   *slog.Logger
	repo     Repository
	products ProductSource
	clients  ClientSource
	enqueuer Enqueuer
	now      func() time.Time
}

// NewService wires the quote vertical. A nil enqueuer disables proposal
// scheduling; callers holding a concrete enqueuer type must not pass a nil
// pointer of it, since that makes the interface value non-nil.
func NewService(logger *slog.Logger, repo Repository, products ProductSource, clientSource ClientSource, enqueuer Enqueuer) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		products: products,
		clients:  clientSource,
		enqueuer: enqueuer,
		now:      time.Now,
	}
}

// Submit creates a new quote request from a storefront cart. The client
// record is created on first contact; the cart is consolidated the same way
// the editor consolidates, so the stored rows are identical either way.
func (s *Service) Submit(ctx context.Context, req SubmitQuoteRequest) (*QuoteRequest, error) {
	client, err := s.clients.EnsureExists(ctx, req.Name, req.Email, req.Phone, req.Company)
	if err != nil {
		return nil, fmt.Errorf("submit quote: %w", err)
	}

	lines, err := s.buildLines(ctx, toSelections(req.Items))
	if err != nil {
		return nil, fmt.Errorf("submit quote: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	header := QuoteRequest{ClientID: client.ID, Status: StatusRequested}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		header.Notes = &notes
	}

	var quoteID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, header)
		if err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		quoteID = id
		for _, line := range lines {
			line.SolicitacaoID = id
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert quote line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, quoteID)
}

// SaveLines replaces every stored line for the quote with rows freshly
// derived from the selections. Delete and insert run in one transaction, so
// a failed save leaves the previously stored lines untouched.
func (s *Service) SaveLines(ctx context.Context, id int64, req SaveLinesRequest) (*QuoteRequest, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if !existing.Editable() {
		return nil, fmt.Errorf("%w: status %s", ErrReadOnly, existing.Status)
	}

	lines, err := s.buildLines(ctx, toSelections(req.Items))
	if err != nil {
		return nil, fmt.Errorf("save lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLines(ctx, id); err != nil {
			return fmt.Errorf("delete quote lines: %w", err)
		}
		for _, line := range lines {
			line.SolicitacaoID = id
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert quote line: %w", err)
			}
		}
		return repo.Touch(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Generate moves a requested quote to gerado, assigns its document number
// and schedules the proposal PDF.
func (s *Service) Generate(ctx context.Context, id, consultantID int64) (*QuoteRequest, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if existing.Status != StatusRequested {
		return nil, fmt.Errorf("%w: can only generate requested quotes", ErrInvalidStatus)
	}
	if len(existing.Lines) == 0 {
		return nil, ErrNoLines
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		numero, err := repo.GenerateNumber(ctx, s.now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		if err := repo.UpdateStatus(ctx, id, StatusGenerated, &numero); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return repo.AssignConsultant(ctx, id, consultantID)
	})
	if err != nil {
		return nil, err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueProposalRender(ctx, id); err != nil {
			// The quote is generated either way; the proposal can be
			// re-rendered manually.
			s.logger.Warn("enqueue proposal render failed", slog.Int64("quote_id", id), slog.Any("error", err))
		}
	}

	return s.repo.Get(ctx, id)
}

// Approve moves a generated quote to aprovado.
func (s *Service) Approve(ctx context.Context, id int64) (*QuoteRequest, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if existing.Status != StatusGenerated {
		return nil, fmt.Errorf("%w: can only approve generated quotes", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusApproved, nil); err != nil {
		return nil, fmt.Errorf("approve quote: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Duplicate copies a quote (header and lines) into a fresh requested record
// flagged as a copy, which is editable regardless of the source's status.
func (s *Service) Duplicate(ctx context.Context, id, consultantID int64) (*QuoteRequest, error) {
	src, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}

	header := QuoteRequest{
		ClientID:       src.ClientID,
		ConsultantID:   &consultantID,
		Status:         StatusRequested,
		DuplicatedFrom: &id,
		Notes:          src.Notes,
	}

	var newID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		created, err := repo.Create(ctx, header)
		if err != nil {
			return fmt.Errorf("create duplicate: %w", err)
		}
		newID = created
		for _, line := range src.Lines {
			line.ID = 0
			line.SolicitacaoID = newID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("copy quote line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, newID)
}

func (s *Service) Get(ctx context.Context, id int64) (*QuoteRequest, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// buildLines consolidates the raw selections and derives one persistable row
// per product: resolved image, structured color snapshot and every monetary
// field clamped to what the columns can hold.
func (s *Service) buildLines(ctx context.Context, selections []pricing.Selection) ([]QuoteLine, error) {
	if over := pricing.Overflowed(selections); len(over) > 0 {
		s.logger.Warn("selection entries beyond three tiers dropped", slog.Any("product_ids", over))
	}

	rows := pricing.Consolidate(selections)
	lines := make([]QuoteLine, 0, len(rows))
	for _, row := range rows {
		product, err := s.products.Get(ctx, row.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", row.ProductID, err)
		}
		lines = append(lines, buildLine(product, row))
	}
	return lines, nil
}

func buildLine(product catalog.Product, row pricing.Consolidated) QuoteLine {
	variations := row.Variations
	if len(variations) == 0 {
		variations = product.Variations
	}
	matched := matchVariation(variations, row.Color)

	resolved := imaging.Resolve(imaging.Input{
		Color:                  row.Color,
		Variations:             variations,
		SelectedVariationImage: row.SelectedVariationImage,
		SelectedVariation:      matched,
		Image0:                 product.Image0,
		Image1:                 product.Image1,
		Image2:                 product.Image2,
	})

	selectedColor := strings.TrimSpace(row.Color)
	var variationImage *string
	if matched != nil {
		if snapshot, err := json.Marshal(matched); err == nil {
			selectedColor = string(snapshot)
		}
		if imaging.Plausible(matched.Image) {
			img := matched.Image
			variationImage = &img
		}
	}

	line := QuoteLine{
		ProductID:       product.ID,
		Quantity1:       money.Clamp2(row.Quantity1),
		Quantity2:       money.Clamp2(row.Quantity2),
		Quantity3:       money.Clamp2(row.Quantity3),
		Color:           strings.TrimSpace(row.Color),
		Customizations:  strPtr(row.Customizations),
		Engraving:       strPtr(row.Engraving),
		Personalization: strPtr(row.Personalization),
		Info:            strPtr(row.Info),
		Notes:           strPtr(row.Notes),
		SelectedColor:   selectedColor,
		VariationImage:  variationImage,
		ImageRefURL:     resolved,
	}

	if product.Cost > 0 {
		line.Cost = money.ValidateDecimal(product.Cost)
	}
	line.TierPrice1 = tierValue(row.Quantity1, row.Price1)
	line.TierPrice2 = tierValue(row.Quantity2, row.Price2)
	line.TierPrice3 = tierValue(row.Quantity3, row.Price3)
	// Legacy duplicates of the tier-1 unit price, still read by reporting.
	line.UnitPrice = line.TierPrice1
	line.UnitValue = line.TierPrice1
	if row.Factor > 0 {
		line.Factor = money.ValidateDecimal(row.Factor)
	}

	return line
}

// tierValue gates a tier's unit price: a tier that was never filled persists
// as a true absence (NULL), not as zero.
func tierValue(quantity, price float64) *float64 {
	if quantity == 0 && price == 0 {
		return nil
	}
	return money.ValidateDecimal(price)
}

func matchVariation(variations []pricing.Variation, color string) *pricing.Variation {
	want := strings.ToLower(strings.TrimSpace(color))
	if want == "" {
		return nil
	}
	for i := range variations {
		if strings.ToLower(strings.TrimSpace(variations[i].Color)) == want {
			return &variations[i]
		}
	}
	return nil
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
