package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ecologic-brindes/ecologic-backend/internal/sales/clients"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/proposals"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/quotes"
	"github.com/ecologic-brindes/ecologic-backend/report"
)

// ProposalRenderer handles proposal:render tasks.
type ProposalRenderer struct {
	Logger    *slog.Logger
	Quotes    quotes.Repository
	Clients   clients.Repository
	Proposals proposals.Repository
	Renderer  *report.Client
	OutputDir string
}

// Handle loads the quote, renders the proposal PDF through Gotenberg and
// records the artifact. Quotes still in solicitado are skipped without
// retry; they were never generated.
func (h *ProposalRenderer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ProposalRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	quote, err := h.Quotes.Get(ctx, payload.QuoteID)
	if err != nil {
		return fmt.Errorf("load quote %d: %w", payload.QuoteID, err)
	}
	if quote.Status == quotes.StatusRequested || quote.Numero == nil {
		h.Logger.Warn("proposal render skipped, quote not generated", slog.Int64("quote_id", quote.ID))
		return asynq.SkipRetry
	}

	client, err := h.Clients.Get(ctx, quote.ClientID)
	if err != nil {
		return fmt.Errorf("load client %d: %w", quote.ClientID, err)
	}

	html, err := report.BuildProposalHTML(quote, client.Name, time.Now())
	if err != nil {
		return fmt.Errorf("build proposal html: %w", err)
	}

	pdf, err := h.Renderer.RenderHTML(ctx, html)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	if err := os.MkdirAll(h.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(h.OutputDir, fmt.Sprintf("proposta-%s.pdf", *quote.Numero))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	_, err = h.Proposals.Insert(ctx, proposals.Proposal{
		QuoteID:     quote.ID,
		Numero:      *quote.Numero,
		PDFPath:     path,
		SizeBytes:   int64(len(pdf)),
		GeneratedBy: quote.ConsultantID,
	})
	if err != nil {
		return fmt.Errorf("record proposal: %w", err)
	}

	h.Logger.Info("proposal rendered",
		slog.Int64("quote_id", quote.ID),
		slog.String("numero", *quote.Numero),
		slog.Int("bytes", len(pdf)))
	return nil
}
