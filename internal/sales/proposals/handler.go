package proposals

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ecologic-brindes/ecologic-backend/internal/platform/httpx"
	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes exposes the rendered-proposal lookup for the back-office.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotes/{id}/proposal", h.Latest)
}

// Latest returns the most recently rendered proposal for a quote, or 404
// when the render job has not produced one yet.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	quoteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote id")
		return
	}

	proposal, err := h.repo.LatestByQuote(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("load proposal failed", slog.Int64("quote_id", quoteID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, proposal)
}
