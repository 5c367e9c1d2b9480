package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dandi/dandi/internal/auth"
	"github.com/dandi/dandi/internal/github"
	"github.com/dandi/dandi/internal/handler/dto"
	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/service"
)

// APIKeyHeader carries the caller's API key on summarizer requests.
const APIKeyHeader = "x-api-key"

// MsgGitHubURLRequired is returned when no repository URL is given.
const MsgGitHubURLRequired = "GitHub URL required"

// ReadmeFetcher retrieves README content.
type ReadmeFetcher interface {
	FetchReadme(ctx context.Context, repo github.Repo) (string, error)
}

// Summarizer produces a structured summary from README content.
type Summarizer interface {
	Summarize(ctx context.Context, readme string) (*model.Summary, error)
}

// SummarizerHandler handles the GitHub summarizer endpoint.
type SummarizerHandler struct {
	keys     *service.KeyService
	fetcher  ReadmeFetcher
	pipeline Summarizer
	logger   *slog.Logger
}

// NewSummarizerHandler creates a new SummarizerHandler.
func NewSummarizerHandler(keys *service.KeyService, fetcher ReadmeFetcher, pipeline Summarizer, logger *slog.Logger) *SummarizerHandler {
	return &SummarizerHandler{
		keys:     keys,
		fetcher:  fetcher,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Summarize handles POST /api/github-summarizer.
// Checks run in order: key present, URL present, URL well-formed, key
// valid, README fetched, summary generated.
func (h *SummarizerHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get(APIKeyHeader)
	if apiKey == "" {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgAPIKeyRequired)
		return
	}

	var req dto.SummarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgInvalidBody)
		return
	}
	rawURL := strings.TrimSpace(req.GitHubURL)
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgGitHubURLRequired)
		return
	}

	repo, err := github.ParseRepoURL(rawURL)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	valid, err := h.keys.Validate(r.Context(), apiKey)
	if err != nil {
		h.logger.Error("key validation failed",
			slog.String("key", auth.MaskKey(apiKey)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, dto.CodeInternal, MsgServerError)
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, dto.CodeUnauthorized, MsgInvalidAPIKey)
		return
	}

	readme, err := h.fetcher.FetchReadme(r.Context(), repo)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	summary, err := h.pipeline.Summarize(r.Context(), readme)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info("repository summarized",
		slog.String("repo", repo.String()),
		slog.String("key", auth.MaskKey(apiKey)),
		slog.Int("cool_facts", len(summary.CoolFacts)),
	)

	writeJSON(w, http.StatusOK, dto.SummarizeResponse{Success: true, Summary: summary})
}
