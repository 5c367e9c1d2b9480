// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/dandi/dandi/internal/model"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SuccessResponse acknowledges an operation without a payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ProtectedRequest carries an API key to validate.
type ProtectedRequest struct {
	APIKey string `json:"apiKey"`
}

// SummarizeRequest names the repository to summarize.
type SummarizeRequest struct {
	GitHubURL string `json:"githubUrl"`
}

// SummarizeResponse carries a generated summary.
type SummarizeResponse struct {
	Success bool           `json:"success"`
	Summary *model.Summary `json:"summary"`
}

// Error codes for failures detected at the HTTP boundary.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeMethod         = "METHOD_NOT_ALLOWED"
	CodeInternal       = "INTERNAL_ERROR"
)
