package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/github"
	"github.com/dandi/dandi/internal/handler/dto"
	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/service"
	"github.com/dandi/dandi/internal/summarize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	readme string
	err    error
	calls  int
	repo   github.Repo
}

func (s *stubFetcher) FetchReadme(_ context.Context, repo github.Repo) (string, error) {
	s.calls++
	s.repo = repo
	return s.readme, s.err
}

type stubSummarizer struct {
	summary *model.Summary
	err     error
	calls   int
	readme  string
}

func (s *stubSummarizer) Summarize(_ context.Context, readme string) (*model.Summary, error) {
	s.calls++
	s.readme = readme
	return s.summary, s.err
}

func summarizeRequest(t *testing.T, apiKey string, body any) *http.Request {
	t.Helper()
	req := jsonRequest(t, http.MethodPost, "/api/github-summarizer", body)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	return req
}

func TestSummarizerHandler_Success(t *testing.T) {
	t.Parallel()
	svc := newKeyService(t)
	key, err := svc.Generate(context.Background(), "ci")
	require.NoError(t, err)

	fetcher := &stubFetcher{readme: "# Dandi"}
	pipeline := &stubSummarizer{summary: &model.Summary{Summary: "A tool.", CoolFacts: []string{"fast"}}}
	h := NewSummarizerHandler(svc, fetcher, pipeline, discardLogger)

	rec := httptest.NewRecorder()
	h.Summarize(rec, summarizeRequest(t, key.Key, map[string]string{"githubUrl": "https://github.com/dandi/dandi/tree/main"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.SummarizeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "A tool.", resp.Summary.Summary)
	assert.Equal(t, []string{"fast"}, resp.Summary.CoolFacts)

	assert.Equal(t, github.Repo{Owner: "dandi", Name: "dandi"}, fetcher.repo)
	assert.Equal(t, "# Dandi", pipeline.readme)
}

func TestSummarizerHandler_CheckOrder(t *testing.T) {
	t.Parallel()
	svc := newKeyService(t)
	key, err := svc.Generate(context.Background(), "ci")
	require.NoError(t, err)

	validURL := map[string]string{"githubUrl": "https://github.com/a/b"}

	tests := []struct {
		name        string
		apiKey      string
		body        any
		wantStatus  int
		wantError   string
		wantFetched bool
	}{
		{"missing_key_wins_over_missing_url", "", map[string]string{}, http.StatusBadRequest, MsgAPIKeyRequired, false},
		{"missing_url", "sk-unknown", map[string]string{}, http.StatusBadRequest, MsgGitHubURLRequired, false},
		{"bad_url_before_key_check", "sk-unknown", map[string]string{"githubUrl": "https://gitlab.com/a/b"}, http.StatusBadRequest, github.MsgInvalidURL, false},
		{"invalid_key", "sk-unknown", validURL, http.StatusUnauthorized, MsgInvalidAPIKey, false},
		{"malformed_body", key.Key, "{", http.StatusBadRequest, MsgInvalidBody, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{readme: "readme"}
			pipeline := &stubSummarizer{summary: &model.Summary{Summary: "s", CoolFacts: []string{}}}
			h := NewSummarizerHandler(svc, fetcher, pipeline, discardLogger)

			rec := httptest.NewRecorder()
			h.Summarize(rec, summarizeRequest(t, tt.apiKey, tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
			assert.Equal(t, 0, fetcher.calls)
			assert.Equal(t, 0, pipeline.calls)
		})
	}
}

func TestSummarizerHandler_DownstreamFailures(t *testing.T) {
	t.Parallel()
	svc := newKeyService(t)
	key, err := svc.Generate(context.Background(), "ci")
	require.NoError(t, err)

	tests := []struct {
		name       string
		fetchErr   error
		modelErr   error
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{
			name:       "fetch_failed",
			fetchErr:   apperror.Upstream(github.MsgFetchFailed, errors.New("status 404")),
			wantStatus: http.StatusInternalServerError,
			wantError:  github.MsgFetchFailed,
			wantCode:   "UPSTREAM_ERROR",
		},
		{
			name:       "quota",
			modelErr:   apperror.QuotaExceeded(summarize.OpenAIQuotaMessage, summarize.ErrQuota),
			wantStatus: http.StatusTooManyRequests,
			wantError:  summarize.OpenAIQuotaMessage,
			wantCode:   "QUOTA_EXCEEDED",
		},
		{
			name:       "unparseable_output",
			modelErr:   apperror.Parse(summarize.MsgInvalidOutput, errors.New("unexpected end of JSON input")),
			wantStatus: http.StatusInternalServerError,
			wantError:  summarize.MsgInvalidOutput,
			wantCode:   "INVALID_MODEL_OUTPUT",
		},
		{
			name:       "missing_model_key",
			modelErr:   apperror.Configuration(summarize.MsgMissingModel),
			wantStatus: http.StatusInternalServerError,
			wantError:  summarize.MsgMissingModel,
			wantCode:   "MISSING_CONFIGURATION",
		},
		{
			name:       "unclassified",
			modelErr:   errors.New("boom: secret detail"),
			wantStatus: http.StatusInternalServerError,
			wantError:  MsgServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{readme: "readme", err: tt.fetchErr}
			pipeline := &stubSummarizer{err: tt.modelErr}
			h := NewSummarizerHandler(svc, fetcher, pipeline, discardLogger)

			rec := httptest.NewRecorder()
			h.Summarize(rec, summarizeRequest(t, key.Key, map[string]string{"githubUrl": "https://github.com/a/b"}))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.fetchErr != nil {
				assert.Equal(t, 0, pipeline.calls)
			}
		})
	}
}

func TestSummarizerHandler_MissingStore(t *testing.T) {
	t.Parallel()
	h := NewSummarizerHandler(service.NewKeyService(nil, nil, 0, discardLogger, nil), &stubFetcher{}, &stubSummarizer{}, discardLogger)

	rec := httptest.NewRecorder()
	h.Summarize(rec, summarizeRequest(t, "sk-x", map[string]string{"githubUrl": "https://github.com/a/b"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MsgServerError, decodeError(t, rec).Error)
}
