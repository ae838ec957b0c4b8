// source/sharepoint.go
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const graphScope = "https://graph.microsoft.com/.default"

// SharePointFetcher downloads the workbook from SharePoint Online using the
// OAuth2 client-credentials flow against Azure AD.
type SharePointFetcher struct {
	cfg    config.SharePointConfig
	client *http.Client
}

func NewSharePointFetcher(cfg config.SharePointConfig, timeout time.Duration) *SharePointFetcher {
	return &SharePointFetcher{cfg: cfg, client: newHTTPClient(timeout)}
}

func (f *SharePointFetcher) Provider() Provider { return SharePoint }

func (f *SharePointFetcher) tokenURL() string {
	if f.cfg.TokenURL != "" {
		return f.cfg.TokenURL
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(f.cfg.TenantID))
}

func (f *SharePointFetcher) credentials() *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		TokenURL:     f.tokenURL(),
		Scopes:       []string{graphScope},
	}
}

// FileURL returns the REST endpoint serving the raw bytes of the configured file.
func (f *SharePointFetcher) FileURL() string {
	serverRelative := (&url.URL{Path: f.cfg.FilePath}).EscapedPath()
	serverRelative = strings.ReplaceAll(serverRelative, "'", "''")
	return fmt.Sprintf("%s/_api/web/GetFileByServerRelativeUrl('%s')/$value",
		strings.TrimRight(f.cfg.SiteURL, "/"), serverRelative)
}

func (f *SharePointFetcher) checkConfig() error {
	if f.cfg.SiteURL == "" || f.cfg.FilePath == "" || f.cfg.ClientID == "" || f.cfg.ClientSecret == "" {
		return errors.New("sharepoint site_url, file_path, client_id and client_secret must be configured")
	}
	if f.cfg.TenantID == "" && f.cfg.TokenURL == "" {
		return errors.New("sharepoint tenant_id must be configured")
	}
	return nil
}

func (f *SharePointFetcher) token(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	tok, err := f.credentials().Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}
	return tok, nil
}

func (f *SharePointFetcher) Fetch(ctx context.Context) (*Table, error) {
	if err := f.checkConfig(); err != nil {
		return nil, unavailable(SharePoint, err)
	}
	tok, err := f.token(ctx)
	if err != nil {
		return nil, unavailable(SharePoint, err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tok.AccessToken)
	data, err := download(ctx, f.client, f.FileURL(), header)
	if err != nil {
		return nil, unavailable(SharePoint, err)
	}

	table, err := DecodeDocument(path.Base(f.cfg.FilePath), data)
	if err != nil {
		return nil, unavailable(SharePoint, err)
	}
	return table, nil
}

// Validate only obtains a token.
func (f *SharePointFetcher) Validate(ctx context.Context) error {
	if err := f.checkConfig(); err != nil {
		return unavailable(SharePoint, err)
	}
	if _, err := f.token(ctx); err != nil {
		return unavailable(SharePoint, err)
	}
	return nil
}
