package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"satisfaction/internal/core"
	"satisfaction/internal/ratings"
)

var _ ratings.Source = (*Client)(nil)

// DefaultRange is read when no range is configured.
const DefaultRange = "Ratings!A:B"

// Config selects the spreadsheet and credentials. A saved OAuth token (see
// Authorize) takes precedence over service account credentials; without
// either, CredentialsFile falls back to GOOGLE_APPLICATION_CREDENTIALS.
type Config struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON string
	CredentialsFile string
	OAuth           OAuthConfig
}

// Client reads ratings from a Google Sheets range whose first row holds
// the headers "date" and "rate" (any order, case-insensitive).
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	rng := strings.TrimSpace(cfg.Range)
	if rng == "" {
		rng = DefaultRange
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, rng: rng}, nil
}

// newSheetsService initializes a read-only Sheets service.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	if cfg.OAuth.HasToken() {
		slog.DebugContext(ctx, "Using OAuth user credentials")
		client, err := cfg.OAuth.HTTPClient(ctx)
		if err != nil {
			return nil, err
		}
		svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return svc, nil
	}

	credsJSON := strings.TrimSpace(cfg.CredentialsJSON)
	credsFile := strings.TrimSpace(cfg.CredentialsFile)
	if credsJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentials []byte
	switch {
	case credsJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		credentials = []byte(credsJSON)
	case credsFile != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", credsFile)
		b, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Load implements ratings.Source.
func (c *Client) Load(ctx context.Context) ([]core.RawRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", c.rng, err)
	}
	recs, err := parseValues(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("parse range %s: %w", c.rng, err)
	}
	slog.InfoContext(ctx, "Ratings read from Google Sheets", "range", c.rng, "rows", len(recs))
	return recs, nil
}
