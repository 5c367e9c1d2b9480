package summarize

import (
	"context"
	"errors"
	"regexp"
)

// ErrQuota marks a provider error caused by exhausted quota or rate limits.
var ErrQuota = errors.New("model quota exceeded")

var quotaPattern = regexp.MustCompile(`(?i)\b429\b|quota|resource_exhausted`)

// Model is a text completion backend.
type Model interface {
	// Provider names the backend, e.g. "openai".
	Provider() string
	// QuotaMessage is the remediation text shown when quota is exhausted.
	QuotaMessage() string
	// Complete sends prompt at temperature 0 and returns the reply text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// isQuotaError reports whether err signals exhausted quota.
func isQuotaError(err error) bool {
	return errors.Is(err, ErrQuota) || quotaPattern.MatchString(err.Error())
}
