// source/gdrive.go
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/PhilHen99/InplayBasketSourceFinder/config"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// GoogleDriveFetcher downloads the workbook from Google Drive with a
// service-account credentials file.
type GoogleDriveFetcher struct {
	cfg  config.GoogleDriveConfig
	opts []option.ClientOption
}

// NewGoogleDriveFetcher builds a fetcher. Extra client options replace the
// credentials-file authentication when given.
func NewGoogleDriveFetcher(cfg config.GoogleDriveConfig, opts ...option.ClientOption) *GoogleDriveFetcher {
	return &GoogleDriveFetcher{cfg: cfg, opts: opts}
}

func (f *GoogleDriveFetcher) Provider() Provider { return GoogleDrive }

func (f *GoogleDriveFetcher) service(ctx context.Context) (*drive.Service, error) {
	if f.cfg.FileID == "" {
		return nil, errors.New("google drive file_id must be configured")
	}
	opts := f.opts
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(f.cfg.CredentialsPath),
			option.WithScopes(drive.DriveReadonlyScope),
		}
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return svc, nil
}

func (f *GoogleDriveFetcher) Fetch(ctx context.Context) (*Table, error) {
	svc, err := f.service(ctx)
	if err != nil {
		return nil, unavailable(GoogleDrive, err)
	}

	resp, err := svc.Files.Get(f.cfg.FileID).Context(ctx).Download()
	if err != nil {
		return nil, unavailable(GoogleDrive, fmt.Errorf("failed to download file %s: %w", f.cfg.FileID, err))
	}
	defer resp.Body.Close()

	data, err := readAll(resp.Body)
	if err != nil {
		return nil, unavailable(GoogleDrive, fmt.Errorf("failed to read file %s: %w", f.cfg.FileID, err))
	}

	// Drive file IDs carry no extension, so the format is sniffed.
	table, err := DecodeDocument("", data)
	if err != nil {
		return nil, unavailable(GoogleDrive, err)
	}
	return table, nil
}

func (f *GoogleDriveFetcher) Validate(ctx context.Context) error {
	svc, err := f.service(ctx)
	if err != nil {
		return unavailable(GoogleDrive, err)
	}
	if _, err := svc.Files.Get(f.cfg.FileID).Fields("id").Context(ctx).Do(); err != nil {
		return unavailable(GoogleDrive, err)
	}
	return nil
}
