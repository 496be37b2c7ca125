package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	UserAgent = "sheet-countdown/1.0 (github.com/pfrederiksen/sheet-countdown)"
	Timeout   = 30 * time.Second
)

// ErrFetchFailure matches every error returned by Fetcher.Fetch.
var ErrFetchFailure = errors.New("fetch failure")

// FetchError describes a failed CSV download. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailure
}

// Fetcher downloads the published CSV text of a spreadsheet.
type Fetcher struct {
	client *http.Client
	url    string
}

// NewFetcher creates a Fetcher for csvURL. A zero timeout selects the default.
func NewFetcher(csvURL string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		url: csvURL,
	}
}

// URL returns the CSV export address the fetcher reads from.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch downloads the CSV body. Transport errors and non-2xx responses are
// reported as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", &FetchError{URL: f.url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: f.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: f.url, Err: fmt.Errorf("reading body: %w", err)}
	}

	return string(body), nil
}
