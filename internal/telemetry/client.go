package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout = 3 * time.Second
	defaultScheme  = "http://"
	maxBodyBytes   = 64 << 10
)

var (
	ErrNotConfigured = errors.New("ESP_IP not configured")
	ErrUnreachable   = errors.New("ESP not reachable")
)

// FetchError describes a failed device read. Reason is the human readable
// message shown to callers; Cause is the underlying transport or decode error.
type FetchError struct {
	Reason string
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

func (e *FetchError) Is(target error) bool { return target == ErrUnreachable }

type Client struct {
	addr string
	http *http.Client
}

// New creates a device client. An empty addr yields a client whose Fetch
// always returns ErrNotConfigured.
func New(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		addr: NormalizeAddress(addr),
		http: &http.Client{Timeout: timeout},
	}
}

// NormalizeAddress trims addr and prefixes plain http when no scheme is given.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if !strings.Contains(addr, "://") {
		addr = defaultScheme + addr
	}
	return addr
}

func (c *Client) Address() string { return c.addr }

func (c *Client) Fetch(ctx context.Context) (Reading, error) {
	if c.addr == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.addr, nil)
	if err != nil {
		return nil, &FetchError{Reason: ErrUnreachable.Error(), Cause: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Reason: ErrUnreachable.Error(), Cause: err}
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Reason: ErrUnreachable.Error(), Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()
	var r Reading
	if err := dec.Decode(&r); err != nil {
		return nil, &FetchError{Reason: ErrUnreachable.Error(), Cause: fmt.Errorf("decode telemetry: %w", err)}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &FetchError{Reason: ErrUnreachable.Error(), Cause: errors.New("trailing data after telemetry object")}
	}
	// a literal JSON null decodes into a nil map
	if r == nil {
		return nil, &FetchError{Reason: ErrUnreachable.Error(), Cause: errors.New("telemetry is not a JSON object")}
	}
	return r, nil
}
