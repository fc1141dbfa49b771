package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 20
)

var (
	// ErrNotFound is returned when the requested file or split does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when the service cannot be reached or fails
	ErrUnavailable = errors.New("service unavailable")
	// ErrDecode is returned when a response body cannot be decoded
	ErrDecode = errors.New("invalid response")
)

// FetchError describes a failed collaborator request. Callers decide whether
// to retry; the client never does.
type FetchError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Ref identifies one extracted document
type Ref struct {
	Company string `json:"company" toml:"company"`
	File    string `json:"file" toml:"file"`
	Split   string `json:"split" toml:"split"`
}

func (r Ref) String() string {
	return strings.Join([]string{r.Company, r.File, r.Split}, "/")
}

// File is a listed source file and its extracted splits
type File struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Company string   `json:"company"`
	Splits  []Split  `json:"splits"`
	Tags    []string `json:"tags,omitempty"`
}

// Split is one extracted section of a file
type Split struct {
	ID   string `json:"id"`
	Form string `json:"form"`
	Name string `json:"name"`
}

// Document is a fetched payload: raw text or tokenized JSON
type Document struct {
	Ref         Ref
	ContentType string
	Body        []byte
}

// IsJSON reports whether the payload was served as JSON
func (d Document) IsJSON() bool {
	return strings.Contains(d.ContentType, "json")
}

// Option configures a Client
type Option func(*Client)

// Client talks to the extraction and persistence service
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithToken sets a bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// ListFiles returns the files of a company
func (c *Client) ListFiles(ctx context.Context, company string) ([]File, error) {
	u := c.url("api", "companies", company, "files")

	body, _, err := c.get(ctx, "list files", u)
	if err != nil {
		return nil, err
	}

	var files []File
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, &FetchError{Op: "list files", URL: u, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return files, nil
}

// FetchDocument retrieves the payload of one split
func (c *Client) FetchDocument(ctx context.Context, ref Ref) (Document, error) {
	u := c.url("api", "companies", ref.Company, "files", ref.File, "splits", ref.Split)

	body, contentType, err := c.get(ctx, "fetch document", u)
	if err != nil {
		return Document{}, err
	}
	return Document{Ref: ref, ContentType: contentType, Body: body}, nil
}

// FetchPreferences returns the enabled form identifiers of a company
func (c *Client) FetchPreferences(ctx context.Context, company string) ([]string, error) {
	u := c.url("api", "companies", company, "preferences")

	body, _, err := c.get(ctx, "fetch preferences", u)
	if err != nil {
		return nil, err
	}

	var prefs struct {
		Forms []string `json:"forms"`
	}
	if err := json.Unmarshal(body, &prefs); err != nil {
		return nil, &FetchError{Op: "fetch preferences", URL: u, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return prefs.Forms, nil
}

func (c *Client) url(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func (c *Client) get(ctx context.Context, op, u string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", &FetchError{Op: op, URL: u, Err: err}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("Collaborator request failed", "op", op, "url", u, "error", err)
		return nil, "", &FetchError{Op: op, URL: u, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	slog.Debug("Collaborator response", "op", op, "url", u, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", &FetchError{Op: op, URL: u, Status: resp.StatusCode, Err: ErrNotFound}
	case resp.StatusCode != http.StatusOK:
		return nil, "", &FetchError{Op: op, URL: u, Status: resp.StatusCode, Err: ErrUnavailable}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", &FetchError{Op: op, URL: u, Status: resp.StatusCode, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Generations hands out request-generation tokens. A result is applied only
// if its token is still the latest one issued.
type Generations struct {
	current atomic.Uint64
}

// Next starts a new generation and returns its token
func (g *Generations) Next() uint64 {
	return g.current.Add(1)
}

// IsCurrent reports whether token belongs to the latest generation
func (g *Generations) IsCurrent(token uint64) bool {
	return g.current.Load() == token
}
