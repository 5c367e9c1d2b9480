// Package github fetches repository READMEs from the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/metrics"
	"golang.org/x/oauth2"
)

// Caller-facing messages.
const (
	MsgInvalidURL  = "Invalid GitHub URL format"
	MsgFetchFailed = "Failed to fetch README content"
)

const (
	// DefaultAPIURL is the public GitHub REST API.
	DefaultAPIURL = "https://api.github.com"
	// DefaultMaxReadmeBytes is the largest README accepted.
	DefaultMaxReadmeBytes = 512 << 10

	userAgent = "Dandi-App"
	rawAccept = "application/vnd.github.raw"
)

var repoURLRegex = regexp.MustCompile(`^https://github\.com/[\w-]+/[\w-]+(/.*)?$`)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoURL extracts the owner and repository from a github.com URL.
// Extra path segments such as /tree/main are ignored.
func ParseRepoURL(raw string) (Repo, error) {
	if !repoURLRegex.MatchString(raw) {
		return Repo{}, apperror.Validation(MsgInvalidURL)
	}

	parts := strings.SplitN(strings.TrimPrefix(raw, "https://github.com/"), "/", 3)
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}

// Config configures a Client.
type Config struct {
	APIURL         string
	Token          string
	Timeout        time.Duration
	MaxReadmeBytes int64
}

// Client fetches README content.
type Client struct {
	apiURL   string
	maxBytes int64
	timeout  time.Duration
	http     *http.Client
	metrics  metrics.Recorder
}

// NewClient creates a Client. A non-empty token is sent as a bearer credential.
func NewClient(cfg Config, recorder metrics.Recorder) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.MaxReadmeBytes <= 0 {
		cfg.MaxReadmeBytes = DefaultMaxReadmeBytes
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	httpClient := &http.Client{}
	if cfg.Token != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	}

	return &Client{
		apiURL:   strings.TrimSuffix(cfg.APIURL, "/"),
		maxBytes: cfg.MaxReadmeBytes,
		timeout:  cfg.Timeout,
		http:     httpClient,
		metrics:  recorder,
	}
}

// FetchReadme returns the raw README of repo. It makes one attempt; any
// failure is an upstream error.
func (c *Client) FetchReadme(ctx context.Context, repo Repo) (string, error) {
	start := time.Now()
	readme, err := c.fetchReadme(ctx, repo)
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	c.metrics.ObserveReadmeFetch(status, time.Since(start))

	if err != nil {
		return "", apperror.Upstream(MsgFetchFailed, err)
	}
	return readme, nil
}

func (c *Client) fetchReadme(ctx context.Context, repo Repo) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.apiURL, repo.Owner, repo.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", rawAccept)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s readme: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s readme: status %d", repo, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s readme: %w", repo, err)
	}
	if int64(len(body)) > c.maxBytes {
		return "", fmt.Errorf("%s readme exceeds %d bytes", repo, c.maxBytes)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", errors.New("readme is empty")
	}

	return string(body), nil
}
