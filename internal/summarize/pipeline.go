package summarize

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/metrics"
	"github.com/dandi/dandi/internal/model"
)

// Caller-facing messages.
const (
	MsgMissingModel  = "Missing language model configuration"
	MsgModelFailed   = "Failed to generate summary"
	MsgModelTimedOut = "Language model request timed out"
)

// Pipeline builds the prompt, calls the model once and parses the reply.
type Pipeline struct {
	model   Model
	timeout time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPipeline creates a Pipeline. A nil model fails every call with a
// configuration error.
func NewPipeline(m Model, timeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Pipeline{model: m, timeout: timeout, logger: logger, metrics: recorder}
}

// Summarize returns the structured summary of readme.
func (p *Pipeline) Summarize(ctx context.Context, readme string) (*model.Summary, error) {
	if p.model == nil {
		return nil, apperror.Configuration(MsgMissingModel)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := p.model.Complete(ctx, BuildPrompt(readme))
	if err != nil {
		return nil, p.fail(err, start)
	}

	summary, err := ParseSummary(reply)
	if err != nil {
		p.metrics.ObserveSummarize(p.model.Provider(), metrics.StatusParse, time.Since(start))
		p.logger.Warn("model output rejected",
			slog.String("provider", p.model.Provider()),
			slog.Int("reply_bytes", len(reply)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	p.metrics.ObserveSummarize(p.model.Provider(), metrics.StatusSuccess, time.Since(start))
	return summary, nil
}

func (p *Pipeline) fail(err error, start time.Time) error {
	provider := p.model.Provider()

	if isQuotaError(err) {
		p.metrics.ObserveSummarize(provider, metrics.StatusQuota, time.Since(start))
		p.logger.Warn("model quota exceeded", slog.String("provider", provider), slog.String("error", err.Error()))
		return apperror.QuotaExceeded(p.model.QuotaMessage(), err)
	}

	p.metrics.ObserveSummarize(provider, metrics.StatusError, time.Since(start))
	p.logger.Error("model call failed", slog.String("provider", provider), slog.String("error", err.Error()))

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Upstream(MsgModelTimedOut, err)
	}
	return apperror.Upstream(MsgModelFailed, err)
}
