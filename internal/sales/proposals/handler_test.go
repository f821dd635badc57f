package proposals

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type stubRepo struct {
	latest *Proposal
}

func (s *stubRepo) Insert(ctx context.Context, p Proposal) (int64, error) {
	return 1, nil
}

func (s *stubRepo) LatestByQuote(ctx context.Context, quoteID int64) (*Proposal, error) {
	if s.latest == nil || s.latest.QuoteID != quoteID {
		return nil, shared.ErrNotFound
	}
	return s.latest, nil
}

func newTestRouter(repo Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	NewHandler(logger, repo).MountRoutes(router)
	return router
}

func TestLatestReturnsRenderedProposal(t *testing.T) {
	router := newTestRouter(&stubRepo{latest: &Proposal{
		ID:         3,
		QuoteID:    42,
		Numero:     "ORC-2603-0007",
		PDFPath:    "/proposals/proposta-ORC-2603-0007.pdf",
		SizeBytes:  18432,
		RenderedAt: time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC),
	}})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/quotes/42/proposal", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var got Proposal
	if err := json.Unmarshal(res.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Numero != "ORC-2603-0007" || got.QuoteID != 42 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestLatestNotRenderedYet(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/quotes/42/proposal", nil))

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestLatestInvalidID(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/quotes/abc/proposal", nil))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
