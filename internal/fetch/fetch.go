// Package fetch retrieves and decodes raw template documents from
// URLs and local files. It is the I/O collaborator in front of the
// pure conversion pipeline; failures stay isolated per source.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/norland/catena/internal/checksum"
)

// Kind classifies fetch failures.
type Kind string

const (
	KindNetwork Kind = "network"
	KindTimeout Kind = "timeout"
	KindDecode  Kind = "decode"
)

// Error is a fetch failure tied to one source.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client fetches sources with a bounded per-request timeout.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a fetch client. timeout bounds each request; zero
// or negative falls back to 30 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch retrieves one source (URL or file path) and returns the
// decoded document together with the raw bytes it was decoded from.
func (c *Client) Fetch(ctx context.Context, source string) (any, []byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return c.fetchURL(ctx, source)
	}
	return c.fetchFile(source)
}

func (c *Client) fetchURL(ctx context.Context, url string) (any, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, &Error{Kind: KindNetwork, Source: url, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return nil, nil, &Error{Kind: kind, Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &Error{
			Kind:   KindNetwork,
			Source: url,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{Kind: KindNetwork, Source: url, Err: err}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, &Error{Kind: KindDecode, Source: url, Err: err}
	}
	return doc, data, nil
}

// fetchFile loads a local source. The extension decides the decoder:
// .yml/.yaml parse as YAML, everything else as JSON.
func (c *Client) fetchFile(path string) (any, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &Error{Kind: KindNetwork, Source: path, Err: err}
	}

	var doc any
	lowered := strings.ToLower(path)
	if strings.HasSuffix(lowered, ".yml") || strings.HasSuffix(lowered, ".yaml") {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, &Error{Kind: KindDecode, Source: path, Err: err}
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, &Error{Kind: KindDecode, Source: path, Err: err}
		}
	}
	return doc, data, nil
}

// SourceResult is the per-source outcome of FetchAll. Exactly one of
// Doc or Err is meaningful.
type SourceResult struct {
	ID       string
	Doc      any
	Checksum string
	Err      error
}

// FetchAll retrieves every source concurrently. Failures never abort
// the batch; each lands in its source's result slot. Results keep the
// input order.
func (c *Client) FetchAll(ctx context.Context, sources []string) []SourceResult {
	results := make([]SourceResult, len(sources))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, src := range sources {
		g.Go(func() error {
			doc, raw, err := c.Fetch(gCtx, src)
			results[i] = SourceResult{ID: src, Doc: doc, Err: err}
			if err == nil {
				results[i].Checksum = checksum.Sum(raw)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
