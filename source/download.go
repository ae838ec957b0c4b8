// source/download.go
package source

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// defaultHTTPTimeout bounds a single document download.
const defaultHTTPTimeout = 30 * time.Second

// maxDocumentSize caps the accepted document size. Larger documents are
// rejected rather than truncated.
var maxDocumentSize int64 = 64 << 20

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// download performs a GET against url with the given headers and returns the body.
// Non-200 responses are errors.
func download(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: received status code %d", url, resp.StatusCode)
	}

	body, err := readAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	log.Printf("Source: downloaded %d bytes from %s", len(body), url)
	return body, nil
}

// readAll reads r fully, failing when it holds more than maxDocumentSize bytes.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds the %d byte limit", maxDocumentSize)
	}
	return data, nil
}
