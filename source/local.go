// source/local.go
package source

import (
	"context"
	"fmt"
	"os"
)

// LocalFetcher reads the table from a file on disk. It also serves as the
// fallback source when the configured provider fails.
type LocalFetcher struct {
	Path string
}

func NewLocalFetcher(path string) *LocalFetcher {
	return &LocalFetcher{Path: path}
}

func (f *LocalFetcher) Provider() Provider { return Local }

func (f *LocalFetcher) Fetch(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(Local, err)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, unavailable(Local, fmt.Errorf("failed to read %s: %w", f.Path, err))
	}
	table, err := DecodeDocument(f.Path, data)
	if err != nil {
		return nil, unavailable(Local, fmt.Errorf("failed to decode %s: %w", f.Path, err))
	}
	return table, nil
}

func (f *LocalFetcher) Validate(ctx context.Context) error {
	if _, err := os.Stat(f.Path); err != nil {
		return unavailable(Local, err)
	}
	return nil
}
