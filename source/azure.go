// source/azure.go
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azfile/file"
	"github.com/PhilHen99/InplayBasketSourceFinder/config"
)

// AzureFilesFetcher downloads the workbook from an Azure Files share using a
// storage account shared key.
type AzureFilesFetcher struct {
	cfg config.AzureFilesConfig
}

func NewAzureFilesFetcher(cfg config.AzureFilesConfig) *AzureFilesFetcher {
	return &AzureFilesFetcher{cfg: cfg}
}

func (f *AzureFilesFetcher) Provider() Provider { return AzureFiles }

// FileURL returns the URL of the configured file within its share.
func (f *AzureFilesFetcher) FileURL() string {
	base := f.cfg.ServiceURL
	if base == "" {
		base = fmt.Sprintf("https://%s.file.core.windows.net", f.cfg.AccountName)
	}
	segments := strings.Split(strings.Trim(f.cfg.FilePath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), url.PathEscape(f.cfg.ShareName), strings.Join(segments, "/"))
}

func (f *AzureFilesFetcher) client() (*file.Client, error) {
	if f.cfg.AccountName == "" || f.cfg.AccountKey == "" || f.cfg.ShareName == "" || f.cfg.FilePath == "" {
		return nil, errors.New("azure account_name, account_key, share_name and file_path must be configured")
	}
	cred, err := file.NewSharedKeyCredential(f.cfg.AccountName, f.cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build shared key credential: %w", err)
	}
	client, err := file.NewClientWithSharedKeyCredential(f.FileURL(), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create file client: %w", err)
	}
	return client, nil
}

func (f *AzureFilesFetcher) Fetch(ctx context.Context) (*Table, error) {
	client, err := f.client()
	if err != nil {
		return nil, unavailable(AzureFiles, err)
	}

	resp, err := client.DownloadStream(ctx, nil)
	if err != nil {
		return nil, unavailable(AzureFiles, fmt.Errorf("failed to download %s: %w", f.cfg.FilePath, err))
	}
	defer resp.Body.Close()

	data, err := readAll(resp.Body)
	if err != nil {
		return nil, unavailable(AzureFiles, fmt.Errorf("failed to read %s: %w", f.cfg.FilePath, err))
	}

	table, err := DecodeDocument(f.cfg.FilePath, data)
	if err != nil {
		return nil, unavailable(AzureFiles, err)
	}
	return table, nil
}

func (f *AzureFilesFetcher) Validate(ctx context.Context) error {
	client, err := f.client()
	if err != nil {
		return unavailable(AzureFiles, err)
	}
	if _, err := client.GetProperties(ctx, nil); err != nil {
		return unavailable(AzureFiles, err)
	}
	return nil
}
