package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dandi/dandi/internal/auth"
	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/repository"
	"github.com/dandi/dandi/internal/service"
)

type output struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	Masked    string `json:"masked"`
	CreatedAt string `json:"created_at"`
}

var errInvalidFormat = errors.New("invalid format; use plain or json")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("bootstrap-api-key", flag.ContinueOnError)
	var (
		databaseURL = fs.String("database-url", os.Getenv("DATABASE_URL"), "postgres:// or sqlite:// store URL")
		name        = fs.String("name", model.DefaultKeyName, "API key name")
		format      = fs.String("format", "plain", "Output format: plain or json")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	outFormat := strings.ToLower(*format)
	if outFormat != "plain" && outFormat != "json" {
		return errInvalidFormat
	}
	if *databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repository.Open(ctx, *databaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys := service.NewKeyService(store, nil, 10*time.Second, logger, nil)

	key, err := keys.Generate(ctx, *name)
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}

	out := output{
		ID:        key.ID,
		Name:      key.Name,
		Key:       key.Key,
		Masked:    auth.MaskKey(key.Key),
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	}

	if outFormat == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	_, err = fmt.Fprintln(stdout, out.Key)
	return err
}
