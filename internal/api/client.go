// Package api is a typed client for the image generation backend's REST surface.
// Every method issues exactly one request and returns a result/error pair.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"animestudio/internal/jsonutil"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the backend API root used when none is configured.
	DefaultBaseURL = "http://localhost:5000/api"
	// DefaultImageHost prefixes the relative image paths the backend returns.
	DefaultImageHost = "http://localhost:5000"

	// RequestIDHeader carries a per-request UUID for correlating client and server logs.
	RequestIDHeader = "X-Request-ID"

	tracerName = "animestudio/api"
)

// Client talks to the backend. The zero value is not usable; call NewClient.
type Client struct {
	baseURL   string
	imageHost string
	http      *http.Client
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithImageHost sets the prefix for relative image paths.
func WithImageHost(host string) Option {
	return func(c *Client) { c.imageHost = strings.TrimRight(host, "/") }
}

// WithLogger sets the structured logger for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracer sets the tracer used for client spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// NewClient creates a client rooted at baseURL.
// An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		imageHost: DefaultImageHost,
		http:      &http.Client{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status fetches GET /status.
func (c *Client) Status(ctx context.Context) (StatusSnapshot, error) {
	var s StatusSnapshot
	err := c.doJSON(ctx, "get status", http.MethodGet, "/status", nil, &s)
	return s, err
}

// Install posts {type: scope} to /dependencies/install.
// An invalid scope returns ErrInvalidScope without issuing a request.
func (c *Client) Install(ctx context.Context, scope InstallScope) (Ack, error) {
	var ack Ack
	if !scope.Valid() {
		return ack, fmt.Errorf("install: %w: %q", ErrInvalidScope, scope)
	}
	body := map[string]string{"type": string(scope)}
	err := c.doJSON(ctx, "install", http.MethodPost, "/dependencies/install", body, &ack)
	return ack, err
}

// ListCharacters fetches GET /characters.
func (c *Client) ListCharacters(ctx context.Context) ([]Character, error) {
	data, err := c.do(ctx, "list characters", http.MethodGet, "/characters", nil, "")
	if err != nil {
		return nil, err
	}
	return jsonutil.UnmarshalArrayAllowEmpty[Character](data, "list characters")
}

// CreateCharacter posts a multipart form to /characters.
// The optional image is sent as reference_image.
func (c *Client) CreateCharacter(ctx context.Context, in CharacterInput) (Character, error) {
	var ch Character
	body, contentType, err := encodeCharacterForm(in, "reference_image")
	if err != nil {
		return ch, fmt.Errorf("create character: %w", err)
	}
	data, err := c.do(ctx, "create character", http.MethodPost, "/characters", body, contentType)
	if err != nil {
		return ch, err
	}
	err = jsonutil.UnmarshalWithContext(data, &ch, "create character")
	return ch, err
}

// UpdateCharacter puts a multipart form to /characters/{id}.
// The optional replacement image is sent as new_image.
func (c *Client) UpdateCharacter(ctx context.Context, id string, in CharacterInput) (Character, error) {
	var ch Character
	body, contentType, err := encodeCharacterForm(in, "new_image")
	if err != nil {
		return ch, fmt.Errorf("update character: %w", err)
	}
	data, err := c.do(ctx, "update character", http.MethodPut, "/characters/"+url.PathEscape(id), body, contentType)
	if err != nil {
		return ch, err
	}
	err = jsonutil.UnmarshalWithContext(data, &ch, "update character")
	return ch, err
}

// DeleteCharacter issues DELETE /characters/{id}.
func (c *Client) DeleteCharacter(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete character", http.MethodDelete, "/characters/"+url.PathEscape(id), nil, "")
	return err
}

// CreateScene posts {character_id, plot_description} to /scenes.
func (c *Client) CreateScene(ctx context.Context, req SceneRequest) (Scene, error) {
	var s Scene
	err := c.doJSON(ctx, "create scene", http.MethodPost, "/scenes", req, &s)
	return s, err
}

// ImageURL resolves a server-supplied image path against the image host.
// Absolute URLs pass through; an empty path yields "".
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.imageHost + path
}

// ProbeImage checks that an image URL resolves with a HEAD request.
func (c *Client) ProbeImage(ctx context.Context, rawURL string) error {
	ctx, span := c.startSpan(ctx, "probe image", http.MethodHead, rawURL)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return c.fail(span, "probe image", fmt.Errorf("probe image: %w", err))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(span, "probe image", fmt.Errorf("probe image: %w", err))
	}
	resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.fail(span, "probe image", &Error{Op: "probe image", StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)})
	}
	return nil
}

// doJSON encodes in (if non-nil) as the request body and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	data, err := c.do(ctx, op, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return jsonutil.UnmarshalWithContext(data, out, op)
}

// do issues one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	target := c.baseURL + path
	ctx, span := c.startSpan(ctx, op, method, target)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, c.fail(span, op, fmt.Errorf("%s: %w", op, err))
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	span.SetAttributes(attribute.String("animestudio.request.id", requestID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(span, op, fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(span, op, fmt.Errorf("%s: read body: %w", op, err))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(span, op, &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, data),
		})
	}
	return data, nil
}

func (c *Client) startSpan(ctx context.Context, op, method, target string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", target),
		),
	)
}

// fail records err on the span, logs it, and returns it unchanged.
func (c *Client) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Error("api request failed", "op", op, "error", err)
	return err
}

// encodeCharacterForm builds the multipart body shared by create and update.
func encodeCharacterForm(in CharacterInput, imageField string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("description", in.Description); err != nil {
		return nil, "", err
	}
	if in.Image != nil && in.Image.Content != nil {
		name := filepath.Base(in.Image.Filename)
		if name == "." || name == string(filepath.Separator) || name == "" {
			name = "image.png"
		}
		part, err := w.CreateFormFile(imageField, name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, in.Image.Content); err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
