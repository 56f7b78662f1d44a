// Package arxiv searches arXiv and fetches paper PDFs.
package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/learnaloud/internal/apistats"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL = "http://export.arxiv.org/api/query"
	DefaultPDFURL = "https://arxiv.org/pdf"

	// DefaultInterval is the spacing arXiv asks API clients to keep between calls.
	DefaultInterval = 3 * time.Second

	statsName = "arxiv"
)

// ErrNotFound is returned when arXiv has no paper with the requested ID.
var ErrNotFound = errors.New("paper not found")

// Options configures a Client. Zero values select the public endpoints.
type Options struct {
	APIURL      string
	PDFURL      string
	Interval    time.Duration // minimum time between requests; negative disables throttling
	MaxPDFBytes int64
	Timeout     time.Duration
	Stats       *apistats.Registry
}

// Client talks to the arXiv export API and PDF mirror.
type Client struct {
	apiURL     string
	pdfURL     string
	maxPDF     int64
	limiter    *rate.Limiter
	httpClient *http.Client
	stats      *apistats.Registry
}

func NewClient(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.PDFURL == "" {
		opts.PDFURL = DefaultPDFURL
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxPDFBytes <= 0 {
		opts.MaxPDFBytes = 50 << 20
	}
	limit := rate.Every(opts.Interval)
	if opts.Interval < 0 {
		limit = rate.Inf
	}
	return &Client{
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		pdfURL:     strings.TrimRight(opts.PDFURL, "/"),
		maxPDF:     opts.MaxPDFBytes,
		limiter:    rate.NewLimiter(limit, 1),
		httpClient: &http.Client{Timeout: opts.Timeout},
		stats:      opts.Stats,
	}
}

// APIInfo describes the call that produced a search result.
type APIInfo struct {
	Server     string         `json:"server"`
	Tool       string         `json:"tool"`
	Arguments  map[string]any `json:"arguments"`
	DurationMs int64          `json:"duration_ms"`
}

// Tool is an operation the librarian can perform.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools lists the operations this client supports.
func Tools() []Tool {
	return []Tool{
		{Name: "search_arxiv", Description: "Search ArXiv papers (direct API)"},
		{Name: "download_paper", Description: "Download paper PDF from ArXiv"},
	}
}

// Search runs a relevance-sorted full-text query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Paper, APIInfo, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	start := time.Now()
	body, err := c.get(ctx, c.apiURL+"?"+params.Encode(), 4<<20)
	info := APIInfo{
		Server:     "arxiv-api",
		Tool:       "search_arxiv",
		Arguments:  map[string]any{"query": query, "limit": maxResults},
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		return nil, info, fmt.Errorf("arxiv search: %w", err)
	}
	papers, err := parseFeed(body)
	if err != nil {
		return nil, info, err
	}
	return papers, info, nil
}

// Lookup returns the metadata of a single paper.
func (c *Client) Lookup(ctx context.Context, id string) (*Paper, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")
	body, err := c.get(ctx, c.apiURL+"?"+params.Encode(), 1<<20)
	if err != nil {
		return nil, fmt.Errorf("arxiv lookup %s: %w", id, err)
	}
	papers, err := parseFeed(body)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &papers[0], nil
}

// Download fetches the PDF for id.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := c.get(ctx, c.pdfURL+"/"+id+".pdf", c.maxPDF)
	if err != nil {
		return nil, fmt.Errorf("arxiv download %s: %w", id, err)
	}
	return data, nil
}

// ValidateID rejects IDs that could not name an arXiv paper, such as ones
// containing whitespace, queries or parent references.
func ValidateID(id string) error {
	if id == "" || len(id) > 64 || strings.Contains(id, "..") ||
		strings.ContainsAny(id, " \t\r\n?#%\\") {
		return fmt.Errorf("invalid arxiv id %q", id)
	}
	return nil
}

func (c *Client) get(ctx context.Context, target string, limit int64) (body []byte, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { c.stats.Observe(statsName, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    string(body),
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
