// Package source retrieves the raw teams table from the configured provider.
// Fetchers return the document as read; cleaning is left to the caller.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/PhilHen99/InplayBasketSourceFinder/config"
)

// Provider identifies a backend the table can be fetched from.
type Provider string

const (
	Local       Provider = config.ProviderLocal
	SharePoint  Provider = config.ProviderSharePoint
	GoogleDrive Provider = config.ProviderGoogleDrive
	S3          Provider = config.ProviderS3
	AzureFiles  Provider = config.ProviderAzureFiles
	MySQL       Provider = config.ProviderMySQL
)

var (
	// ErrSourceUnavailable wraps every network, auth, not-found or decode failure.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidProvider is returned for an unrecognized provider identifier.
	ErrInvalidProvider = errors.New("invalid provider")
)

// ParseProvider maps a configured identifier to a Provider.
func ParseProvider(name string) (Provider, error) {
	if !config.IsKnownProvider(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, name)
	}
	return Provider(name), nil
}

// Table is a raw tabular document: a header row followed by data rows.
// Rows may be shorter than Header when trailing cells are empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Fetcher retrieves the table from one provider.
type Fetcher interface {
	Fetch(ctx context.Context) (*Table, error)
	Provider() Provider
}

// Validator is implemented by fetchers that can check connectivity
// without downloading the whole document.
type Validator interface {
	Validate(ctx context.Context) error
}

// New builds the fetcher selected by cfg.Provider.
func New(cfg config.SourceConfig) (Fetcher, error) {
	provider, err := ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	switch provider {
	case Local:
		return NewLocalFetcher(cfg.LocalPath), nil
	case SharePoint:
		return NewSharePointFetcher(cfg.SharePoint, cfg.FetchTimeout), nil
	case GoogleDrive:
		return NewGoogleDriveFetcher(cfg.GoogleDrive), nil
	case S3:
		return NewS3Fetcher(cfg.S3), nil
	case AzureFiles:
		return NewAzureFilesFetcher(cfg.AzureFiles), nil
	case MySQL:
		return NewMySQLFetcher(cfg.Database), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
}

// unavailable wraps err so that errors.Is(err, ErrSourceUnavailable) holds.
func unavailable(p Provider, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, p, err)
}
