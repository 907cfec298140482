package transport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	defaultCompletionPath = "/v1/predict"
	defaultTimeout        = 30 * time.Second
	defaultCacheTTL       = 30 * time.Second
)

// HTTPBackend sends prediction requests to a JSON-over-HTTP endpoint.
//
// Identical snapshots are served from a TTL cache so rapid re-triggers on
// unchanged content do not hit the network.
type HTTPBackend struct {
	baseURL string
	apiKey  string
	model   string
	path    string
	client  *http.Client
	cache   *ttlcache.Cache[string, *Response]
}

// HTTPOption configures the HTTP backend.
type HTTPOption func(*HTTPBackend)

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) HTTPOption {
	return func(b *HTTPBackend) {
		b.apiKey = key
	}
}

// WithModel sets the model name included in request payloads.
func WithModel(model string) HTTPOption {
	return func(b *HTTPBackend) {
		b.model = model
	}
}

// WithCompletionPath overrides the endpoint path.
func WithCompletionPath(path string) HTTPOption {
	return func(b *HTTPBackend) {
		b.path = path
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(b *HTTPBackend) {
		b.client = client
	}
}

// WithCacheTTL sets how long identical-snapshot responses are reused.
// A non-positive TTL disables caching.
func WithCacheTTL(ttl time.Duration) HTTPOption {
	return func(b *HTTPBackend) {
		if ttl <= 0 {
			b.cache = nil
			return
		}
		b.cache = ttlcache.New[string, *Response](
			ttlcache.WithTTL[string, *Response](ttl),
			ttlcache.WithDisableTouchOnHit[string, *Response](),
		)
	}
}

// NewHTTPBackend creates a backend for the given base URL.
func NewHTTPBackend(baseURL string, opts ...HTTPOption) *HTTPBackend {
	b := &HTTPBackend{
		baseURL: baseURL,
		path:    defaultCompletionPath,
		client:  &http.Client{Timeout: defaultTimeout},
		cache: ttlcache.New[string, *Response](
			ttlcache.WithTTL[string, *Response](defaultCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *Response](),
		),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.cache != nil {
		go b.cache.Start()
	}

	return b
}

// Close stops the cache expiration loop.
func (b *HTTPBackend) Close() {
	if b.cache != nil {
		b.cache.Stop()
	}
}

// predictionPayload is the wire request body.
type predictionPayload struct {
	RequestID       string            `json:"request_id"`
	Model           string            `json:"model,omitempty"`
	FilePath        string            `json:"file_path"`
	FileContents    string            `json:"file_contents"`
	CursorLine      int               `json:"cursor_line"`
	CursorCol       int               `json:"cursor_col"`
	SnapshotVersion int64             `json:"snapshot_version"`
	RecentChanges   []Change          `json:"recent_changes,omitempty"`
	Selection       *SelectionContext `json:"selection,omitempty"`
}

// predictionResult is the wire response body.
type predictionResult struct {
	Candidate     string    `json:"candidate"`
	Model         string    `json:"model,omitempty"`
	ElapsedTimeMs int       `json:"elapsed_time_ms,omitempty"`
	Error         *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Predict implements Backend.
func (b *HTTPBackend) Predict(ctx context.Context, req *Request) (*Response, error) {
	key := b.cacheKey(req)
	if b.cache != nil {
		if item := b.cache.Get(key); item != nil {
			return item.Value(), nil
		}
	}

	payload := predictionPayload{
		RequestID:       req.ID,
		Model:           b.model,
		FilePath:        req.Path,
		FileContents:    req.Content,
		CursorLine:      req.CursorLine,
		CursorCol:       req.CursorCol,
		SnapshotVersion: req.SnapshotVersion,
		RecentChanges:   req.History,
		Selection:       req.Selection,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Message: "encoding request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+b.path, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Message: "building request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Message: "sending request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "reading response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		var result predictionResult
		if json.Unmarshal(body, &result) == nil && result.Error != nil {
			msg = result.Error.Message
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}

	var result predictionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Message: fmt.Sprintf("parsing response: %v", err), Err: err}
	}
	if result.Error != nil {
		return nil, &Error{Message: result.Error.Message}
	}

	out := &Response{
		Candidate: result.Candidate,
		Model:     result.Model,
		ElapsedMs: result.ElapsedTimeMs,
	}

	if b.cache != nil {
		b.cache.Set(key, out, ttlcache.DefaultTTL)
	}

	return out, nil
}

// cacheKey fingerprints the snapshot the prediction is for. The request ID is
// deliberately excluded so re-triggers on identical content hit the cache.
func (b *HTTPBackend) cacheKey(req *Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%d\x00", req.DocumentID, req.Path, req.CursorLine, req.CursorCol)
	io.WriteString(h, req.Content)
	return hex.EncodeToString(h.Sum(nil))
}
