package hotreload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-drift/vui/pkg/vnode"
	"github.com/go-drift/vui/pkg/wire"
)

// maxResponse bounds how much of a response body the client reads.
const maxResponse = 64 << 10

// PushError is returned by Push when the server answers with a non-2xx
// status.
type PushError struct {
	StatusCode int
	Message    string
}

func (e *PushError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hotreload: server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("hotreload: server returned %d: %s", e.StatusCode, e.Message)
}

// Client pushes trees to a running Server. It never retries.
type Client struct {
	// BaseURL is the server root, e.g. "http://192.168.1.20:8080".
	BaseURL string
	// Path is the reload endpoint. Defaults to DefaultPath.
	Path string
	// Vocabulary is the sender's vocabulary version.
	Vocabulary string
	// Compression selects payload compression.
	Compression wire.Compression
	// HTTPClient defaults to http.DefaultClient. Set its Timeout for a
	// transport-level deadline.
	HTTPClient *http.Client
}

// Push encodes tree and sends it. It returns the server's result once the
// remote UI has reconciled it.
func (c *Client) Push(ctx context.Context, tree *vnode.Node) (Result, error) {
	data, err := wire.Encode(tree, wire.Options{Vocabulary: c.Vocabulary, Compression: c.Compression})
	if err != nil {
		return Result{}, err
	}
	return c.PushPayload(ctx, data)
}

// PushPayload sends an already encoded payload.
func (c *Client) PushPayload(ctx context.Context, data []byte) (Result, error) {
	path := c.Path
	if path == "" {
		path = DefaultPath
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(path), bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("hotreload: building request: %w", err)
	}
	req.Header.Set("Content-Type", ContentType)

	var res Result
	if err := c.do(req, &res); err != nil {
		return res, err
	}
	return res, nil
}

// Health queries the server's health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/health"), nil)
	if err != nil {
		return Health{}, fmt.Errorf("hotreload: building request: %w", err)
	}
	var h Health
	err = c.do(req, &h)
	return h, err
}

func (c *Client) url(path string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + path
}

func (c *Client) do(req *http.Request, out any) error {
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("hotreload: %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return fmt.Errorf("hotreload: reading response: %w", err)
	}
	decodeErr := json.Unmarshal(body, out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pe := &PushError{StatusCode: resp.StatusCode}
		var res Result
		if json.Unmarshal(body, &res) == nil && res.Error != "" {
			pe.Message = res.Error
		} else {
			pe.Message = strings.TrimSpace(string(body))
		}
		return pe
	}
	if decodeErr != nil {
		return fmt.Errorf("hotreload: decoding response: %w", decodeErr)
	}
	return nil
}
