package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"autosonic/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:8001"
	DefaultTimeout = 30 * time.Second

	apiPrefix        = "/api"
	maxErrorBodySize = 4096
	uploadField      = "file"
	requestIDHeader  = "X-Request-ID"
)

// Config controls how the analysis API is reached.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements ports.AnalysisBackend over the /api HTTP surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Detail)
}

func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: strings.TrimSpace(cfg.BaseURL), http: httpClient}
}

// Health calls GET /api/.
func (c *Client) Health(ctx context.Context) (domain.BackendStatus, error) {
	var status domain.BackendStatus
	err := c.getJSON(ctx, "health check", "/", &status)
	return status, err
}

// History calls GET /api/analysis-history. Backend order is kept.
func (c *Client) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	if err := c.getJSON(ctx, "fetch history", "/analysis-history", &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

// Details calls GET /api/analysis/{id}.
func (c *Client) Details(ctx context.Context, id string) (domain.AnalysisDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.AnalysisDetails{}, errors.New("analysis id is required")
	}
	var details domain.AnalysisDetails
	err := c.getJSON(ctx, "fetch analysis", "/analysis/"+url.PathEscape(id), &details)
	return details, err
}

// Analyze posts the payload as multipart field "file" to /api/analyze-audio.
func (c *Client) Analyze(ctx context.Context, payload domain.AudioPayload) (domain.AnalysisResult, error) {
	const op = "analyze audio"

	body, contentType, err := encodeUpload(payload)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%s: %w", op, err)
	}

	endpoint, err := buildURL(c.baseURL, "/analyze-audio")
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(requestIDHeader, uuid.NewString())

	var result domain.AnalysisResult
	if err := c.do(req, op, &result); err != nil {
		return domain.AnalysisResult{}, err
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, op string, path string, out any) error {
	endpoint, err := buildURL(c.baseURL, path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func encodeUpload(payload domain.AudioPayload) (io.Reader, string, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = "recording.wav"
	}
	mimeType := strings.TrimSpace(payload.MIMEType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// CreateFormFile would force application/octet-stream, which the
	// backend rejects as a non-audio upload.
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadField, quoteEscaper.Replace(name)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(payload.Data); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildURL joins the configured origin with the /api prefix. A base that
// already ends in /api is accepted as is.
func buildURL(base string, path string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid backend base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid backend base URL %q: scheme must be http or https", base)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid backend base URL %q: missing host", base)
	}
	if !strings.HasSuffix(parsed.Path, apiPrefix) {
		base += apiPrefix
	}
	return base + path, nil
}

// errorDetail extracts a FastAPI style {"detail": ...} message, falling
// back to the trimmed body.
func errorDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var text string
		if err := json.Unmarshal(body.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}
		return strings.TrimSpace(string(body.Detail))
	}
	return strings.TrimSpace(string(raw))
}
