package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecologic-brindes/ecologic-backend/internal/catalog"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/clients"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/pricing"
	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	quotes      map[int64]*QuoteRequest
	lines       map[int64][]QuoteLine
	nextQuoteID int64
	nextLineID  int64
	sequence    int
	lastList    ListQuotesRequest

	// Error injection
	txError          error
	insertLineError  error
	insertFailAfter  int // fail once this many inserts have succeeded in a tx
	insertCount      int
	deleteLinesError error
	updateStatusErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		quotes:      make(map[int64]*QuoteRequest),
		lines:       make(map[int64][]QuoteLine),
		nextQuoteID: 1,
		nextLineID:  1,
	}
}

// WithTx emulates rollback by snapshotting state and restoring it when the
// callback fails, mirroring what the real transaction guarantees.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	savedQuotes := make(map[int64]*QuoteRequest, len(m.quotes))
	for id, q := range m.quotes {
		cp := *q
		savedQuotes[id] = &cp
	}
	savedLines := make(map[int64][]QuoteLine, len(m.lines))
	for id, ls := range m.lines {
		savedLines[id] = append([]QuoteLine(nil), ls...)
	}
	m.insertCount = 0
	if err := fn(ctx, m); err != nil {
		m.quotes = savedQuotes
		m.lines = savedLines
		return err
	}
	return nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*QuoteRequest, error) {
	q, ok := m.quotes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *q
	cp.Lines = append([]QuoteLine(nil), m.lines[id]...)
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error) {
	m.lastList = req
	out := make([]QuoteWithClient, 0, len(m.quotes))
	for _, q := range m.quotes {
		out = append(out, QuoteWithClient{QuoteRequest: *q})
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, q QuoteRequest) (int64, error) {
	id := m.nextQuoteID
	m.nextQuoteID++
	q.ID = id
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	m.quotes[id] = &q
	return id, nil
}

func (m *mockRepository) InsertLine(ctx context.Context, line QuoteLine) (int64, error) {
	if m.insertLineError != nil && m.insertCount >= m.insertFailAfter {
		return 0, m.insertLineError
	}
	m.insertCount++
	line.ID = m.nextLineID
	m.nextLineID++
	m.lines[line.SolicitacaoID] = append(m.lines[line.SolicitacaoID], line)
	return line.ID, nil
}

func (m *mockRepository) DeleteLines(ctx context.Context, quoteID int64) error {
	if m.deleteLinesError != nil {
		return m.deleteLinesError
	}
	delete(m.lines, quoteID)
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status Status, numero *string) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	q, ok := m.quotes[id]
	if !ok {
		return shared.ErrNotFound
	}
	q.Status = status
	if numero != nil {
		q.Numero = numero
	}
	return nil
}

func (m *mockRepository) AssignConsultant(ctx context.Context, id, consultantID int64) error {
	q, ok := m.quotes[id]
	if !ok {
		return shared.ErrNotFound
	}
	q.ConsultantID = &consultantID
	return nil
}

func (m *mockRepository) Touch(ctx context.Context, id int64) error {
	q, ok := m.quotes[id]
	if !ok {
		return shared.ErrNotFound
	}
	q.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	m.sequence++
	return fmt.Sprintf("ORC-%s-%04d", date.Format("0601"), m.sequence), nil
}

// ============================================================================
// MOCK DEPENDENCIES
// ============================================================================

type mockProducts struct {
	products map[int64]catalog.Product
	getError error
}

func (m *mockProducts) Get(ctx context.Context, id int64) (catalog.Product, error) {
	if m.getError != nil {
		return catalog.Product{}, m.getError
	}
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, shared.ErrNotFound
	}
	return p, nil
}

type mockClients struct {
	clients     map[string]clients.Client
	nextID      int64
	ensureError error
}

func (m *mockClients) EnsureExists(ctx context.Context, name, email, phone, company string) (clients.Client, error) {
	if m.ensureError != nil {
		return clients.Client{}, m.ensureError
	}
	if c, ok := m.clients[email]; ok {
		return c, nil
	}
	m.nextID++
	c := clients.Client{ID: m.nextID, Name: name, Email: email, Phone: phone, Company: company}
	if m.clients == nil {
		m.clients = make(map[string]clients.Client)
	}
	m.clients[email] = c
	return c, nil
}

type mockEnqueuer struct {
	enqueued []int64
	err      error
}

func (m *mockEnqueuer) EnqueueProposalRender(ctx context.Context, quoteID int64) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, quoteID)
	return nil
}

// ============================================================================
// FIXTURES
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProducts() *mockProducts {
	return &mockProducts{products: map[int64]catalog.Product{
		10: {
			ID:     10,
			Name:   "Ecobag Algodao Cru",
			Price:  12.50,
			Cost:   7.80,
			Image0: "/img/ecobag-frente.jpg",
			Variations: []pricing.Variation{
				{Color: "Verde", Image: "/img/ecobag-verde.jpg"},
				{Color: "Azul", Image: "/img/ecobag-azul.jpg"},
			},
		},
		20: {
			ID:     20,
			Name:   "Caneta Bambu",
			Price:  3.20,
			Image0: "/img/caneta.jpg",
		},
	}}
}

// newTestService wires a service around the mock repository. A concrete nil
// enqueuer must never cross the interface boundary (it would make the
// interface non-nil), so absent enqueuers become a fresh mock here.
func newTestService(repo *mockRepository, enq *mockEnqueuer) *Service {
	var enqueuer Enqueuer
	if enq != nil {
		enqueuer = enq
	} else {
		enqueuer = &mockEnqueuer{}
	}
	svc := NewService(testLogger(), repo, testProducts(), &mockClients{}, enqueuer)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func submitRequest(items ...SelectionItem) SubmitQuoteRequest {
	return SubmitQuoteRequest{
		Name:  "Ana Martins",
		Email: "ana@empresa.com.br",
		Phone: "(11) 99999-0000",
		Items: items,
	}
}

// ============================================================================
// SUBMIT
// ============================================================================

func TestSubmitConsolidatesRepeatedProduct(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	quote, err := svc.Submit(context.Background(), submitRequest(
		SelectionItem{ProductID: 10, Color: "verde", Quantity1: 100, Price1: 11.90},
		SelectionItem{ProductID: 20, Quantity1: 500, Price1: 2.80},
		SelectionItem{ProductID: 10, Color: "verde", Quantity1: 250, Price1: 10.50},
	))
	require.NoError(t, err)
	require.NotNil(t, quote)

	assert.Equal(t, StatusRequested, quote.Status)
	assert.Nil(t, quote.Numero)
	require.Len(t, quote.Lines, 2)

	ecobag := quote.Lines[0]
	assert.Equal(t, int64(10), ecobag.ProductID)
	assert.Equal(t, 100.0, ecobag.Quantity1)
	assert.Equal(t, 250.0, ecobag.Quantity2)
	assert.Equal(t, 0.0, ecobag.Quantity3)
	require.NotNil(t, ecobag.TierPrice1)
	assert.Equal(t, 11.90, *ecobag.TierPrice1)
	require.NotNil(t, ecobag.TierPrice2)
	assert.Equal(t, 10.50, *ecobag.TierPrice2)
	assert.Nil(t, ecobag.TierPrice3)
	require.NotNil(t, ecobag.UnitPrice)
	assert.Equal(t, 11.90, *ecobag.UnitPrice)

	caneta := quote.Lines[1]
	assert.Equal(t, int64(20), caneta.ProductID)
	assert.Equal(t, 500.0, caneta.Quantity1)
}

func TestSubmitResolvesVariationColorAndImage(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	quote, err := svc.Submit(context.Background(), submitRequest(
		SelectionItem{ProductID: 10, Color: " Verde ", Quantity1: 50, Price1: 12.00},
	))
	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)

	line := quote.Lines[0]
	assert.Equal(t, "/img/ecobag-verde.jpg", line.ImageRefURL)
	require.NotNil(t, line.VariationImage)
	assert.Equal(t, "/img/ecobag-verde.jpg", *line.VariationImage)
	// Matched variations persist as a JSON snapshot, not the plain string.
	assert.True(t, strings.HasPrefix(line.SelectedColor, "{"))
	assert.Contains(t, line.SelectedColor, "Verde")
	require.NotNil(t, line.Cost)
	assert.Equal(t, 7.80, *line.Cost)
}

func TestSubmitFallsBackToProductImage(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	quote, err := svc.Submit(context.Background(), submitRequest(
		SelectionItem{ProductID: 20, Quantity1: 100, Price1: 3.00},
	))
	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)

	line := quote.Lines[0]
	assert.Equal(t, "/img/caneta.jpg", line.ImageRefURL)
	assert.Nil(t, line.VariationImage)
	assert.Equal(t, "", line.SelectedColor)
	assert.Nil(t, line.Cost) // product 20 has no cost recorded
}

func TestSubmitCoercesCurrencyStrings(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	var item SelectionItem
	payload := []byte(`{"product_id":10,"color":"azul","quantity":100,"price":"R$ 1.234,56"}`)
	require.NoError(t, json.Unmarshal(payload, &item))

	quote, err := svc.Submit(context.Background(), submitRequest(item))
	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)
	require.NotNil(t, quote.Lines[0].TierPrice1)
	assert.Equal(t, 1234.56, *quote.Lines[0].TierPrice1)
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	_, err := svc.Submit(context.Background(), submitRequest())
	assert.ErrorIs(t, err, ErrNoLines)
	assert.Empty(t, repo.quotes)
}

func TestSubmitUnknownProductFails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	_, err := svc.Submit(context.Background(), submitRequest(
		SelectionItem{ProductID: 999, Quantity1: 10, Price1: 1.00},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.quotes)
}

// ============================================================================
// SAVE LINES
// ============================================================================

func seedQuote(t *testing.T, repo *mockRepository, svc *Service) *QuoteRequest {
	t.Helper()
	quote, err := svc.Submit(context.Background(), submitRequest(
		SelectionItem{ProductID: 10, Color: "verde", Quantity1: 100, Price1: 11.90},
	))
	require.NoError(t, err)
	return quote
}

func TestSaveLinesReplacesStoredRows(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	quote := seedQuote(t, repo, svc)

	updated, err := svc.SaveLines(context.Background(), quote.ID, SaveLinesRequest{Items: []SelectionItem{
		{ProductID: 20, Quantity1: 300, Price1: 2.95},
	}})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, int64(20), updated.Lines[0].ProductID)
	assert.Equal(t, 300.0, updated.Lines[0].Quantity1)
}

func TestSaveLinesFailureLeavesExistingRows(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	quote := seedQuote(t, repo, svc)

	repo.insertLineError = errors.New("disk full")
	repo.insertFailAfter = 1

	_, err := svc.SaveLines(context.Background(), quote.ID, SaveLinesRequest{Items: []SelectionItem{
		{ProductID: 10, Quantity1: 10, Price1: 1.00},
		{ProductID: 20, Quantity1: 20, Price1: 2.00},
	}})
	require.Error(t, err)

	repo.insertLineError = nil
	after, err := repo.Get(context.Background(), quote.ID)
	require.NoError(t, err)
	require.Len(t, after.Lines, 1)
	assert.Equal(t, int64(10), after.Lines[0].ProductID)
	assert.Equal(t, 100.0, after.Lines[0].Quantity1)
}

func TestSaveLinesRejectsGeneratedQuote(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	quote := seedQuote(t, repo, svc)

	_, err := svc.Generate(context.Background(), quote.ID, 7)
	require.NoError(t, err)

	_, err = svc.SaveLines(context.Background(), quote.ID, SaveLinesRequest{Items: []SelectionItem{
		{ProductID: 20, Quantity1: 10, Price1: 3.00},
	}})
	assert.ErrorIs(t, err, ErrReadOnly)
}

// ============================================================================
// STATUS TRANSITIONS
// ============================================================================

func TestGenerateAssignsNumberAndEnqueuesProposal(t *testing.T) {
	repo := newMockRepository()
	enq := &mockEnqueuer{}
	svc := newTestService(repo, enq)
	quote := seedQuote(t, repo, svc)

	generated, err := svc.Generate(context.Background(), quote.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, generated.Status)
	require.NotNil(t, generated.Numero)
	assert.Equal(t, "ORC-2603-0001", *generated.Numero)
	require.NotNil(t, generated.ConsultantID)
	assert.Equal(t, int64(7), *generated.ConsultantID)
	assert.Equal(t, []int64{quote.ID}, enq.enqueued)
}

func TestGenerateTwiceFails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	quote := seedQuote(t, repo, svc)

	_, err := svc.Generate(context.Background(), quote.ID, 7)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), quote.ID, 7)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGenerateWithoutLinesFails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	id, err := repo.Create(context.Background(), QuoteRequest{ClientID: 1, Status: StatusRequested})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), id, 7)
	assert.ErrorIs(t, err, ErrNoLines)
}

func TestGenerateWithoutEnqueuer(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(testLogger(), repo, testProducts(), &mockClients{}, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	quote := seedQuote(t, repo, svc)

	generated, err := svc.Generate(context.Background(), quote.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, generated.Status)
	require.NotNil(t, generated.Numero)
}

func TestGenerateSurvivesEnqueueFailure(t *testing.T) {
	repo := newMockRepository()
	enq := &mockEnqueuer{err: errors.New("redis down")}
	svc := newTestService(repo, enq)
	quote := seedQuote(t, repo, svc)

	generated, err := svc.Generate(context.Background(), quote.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, generated.Status)
}

func TestApproveRequiresGenerated(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	quote := seedQuote(t, repo, svc)

	_, err := svc.Approve(context.Background(), quote.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Generate(context.Background(), quote.ID, 7)
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	_, err = svc.Approve(context.Background(), quote.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// ============================================================================
// DUPLICATE
// ============================================================================

func TestDuplicateResetsToEditableCopy(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	quote := seedQuote(t, repo, svc)

	_, err := svc.Generate(context.Background(), quote.ID, 7)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), quote.ID)
	require.NoError(t, err)

	copyQuote, err := svc.Duplicate(context.Background(), quote.ID, 9)
	require.NoError(t, err)
	assert.NotEqual(t, quote.ID, copyQuote.ID)
	assert.Equal(t, StatusRequested, copyQuote.Status)
	require.NotNil(t, copyQuote.DuplicatedFrom)
	assert.Equal(t, quote.ID, *copyQuote.DuplicatedFrom)
	assert.Nil(t, copyQuote.Numero)
	assert.True(t, copyQuote.Editable())
	require.Len(t, copyQuote.Lines, 1)
	assert.Equal(t, quote.Lines[0].ProductID, copyQuote.Lines[0].ProductID)

	// The copy accepts edits even though the source is locked.
	_, err = svc.SaveLines(context.Background(), copyQuote.ID, SaveLinesRequest{Items: []SelectionItem{
		{ProductID: 20, Quantity1: 75, Price1: 3.10},
	}})
	require.NoError(t, err)
}

func TestDuplicateMissingQuote(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	_, err := svc.Duplicate(context.Background(), 42, 9)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
