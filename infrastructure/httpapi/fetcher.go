package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rios0rios0/bulkclone/domain"
)

// Fetcher performs list and lookup calls against a platform API. A single
// logical list call follows pagination until the platform stops signalling
// a next page. Transient failures are not retried: any non-200 response or
// malformed payload is terminal for the whole traversal.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher whose requests time out after the given
// duration. A zero timeout means requests block indefinitely.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// FetchAll GETs url and every follow-up page the platform signals,
// returning the concatenated array elements. Cross-page ordering is page
// order, intra-page ordering is array order.
func (f *Fetcher) FetchAll(ctx context.Context, platform Platform, url string) ([]json.RawMessage, error) {
	var elements []json.RawMessage

	for url != "" {
		status, body, header, err := f.get(ctx, platform, url)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &domain.StatusError{Code: status, Body: strings.TrimSpace(string(body))}
		}

		if !json.Valid(body) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidJSON, url)
		}

		// Unmarshal alone is not enough: a top-level null decodes into a
		// nil slice without error.
		trimmed := bytes.TrimLeft(body, " \t\r\n")
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotArray, url)
		}

		var page []json.RawMessage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotArray, url)
		}

		elements = append(elements, page...)
		url = platform.NextPage(header)
	}

	return elements, nil
}

// FetchObject GETs a single-object endpoint and returns its fields.
func (f *Fetcher) FetchObject(ctx context.Context, platform Platform, url string) (map[string]json.RawMessage, error) {
	status, body, _, err := f.get(ctx, platform, url)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &domain.StatusError{Code: status, Body: strings.TrimSpace(string(body))}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidJSON, url)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotObject, url)
	}

	return obj, nil
}

// Probe performs a single GET and returns the raw status and body, for
// callers that need to inspect error responses themselves.
func (f *Fetcher) Probe(ctx context.Context, platform Platform, url string) (int, []byte, error) {
	status, body, _, err := f.get(ctx, platform, url)
	return status, body, err
}

func (f *Fetcher) get(ctx context.Context, platform Platform, url string) (int, []byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to build request for %q: %w", url, err)
	}
	platform.Authorize(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("request to %q failed: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read response from %q: %w", url, err)
	}

	return resp.StatusCode, body, resp.Header, nil
}
