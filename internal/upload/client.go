// Package upload puts local image assets into the remote object store. The
// store accepts multipart POSTs carrying the image, an upload preset, and a
// destination folder tag, and answers with JSON containing a public
// secure_url.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"reportsync/internal/report"
)

// URIValidator decides whether a URI points at an uploadable local asset.
// report.PhotoVault satisfies this.
type URIValidator interface {
	Validate(uri string) bool
}

// SleepFunc waits for d or until ctx is cancelled. Injected so retry timing
// is testable without real timers.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options tunes the client.
type Options struct {
	// Endpoint is the upload URL of the remote object store.
	Endpoint string

	// UploadPreset and Folder are passed verbatim as form fields.
	UploadPreset string
	Folder       string

	// MaxRetries bounds attempts of the primary strategy. The fallback
	// strategy gets a single attempt.
	MaxRetries int
	RetryDelay time.Duration

	// Timeout bounds each HTTP attempt via context cancellation.
	Timeout time.Duration

	// Sleep defaults to a context-aware timer sleep.
	Sleep SleepFunc

	// HTTPClient defaults to http.DefaultClient. Per-attempt timeouts come
	// from context, not from the client.
	HTTPClient *http.Client
}

// Client implements report.Uploader with an ordered list of encoding
// strategies: a base64 form field first (most portable), then a native
// multipart file part. Some platform/file combinations succeed under one
// encoding and not the other, so exhausting the retries of the first
// strategy escalates to the second instead of giving up.
type Client struct {
	opts      Options
	validator URIValidator
	network   report.ConnectivityMonitor
	logger    report.Logger
	client    *http.Client
	sleep     SleepFunc
}

var _ report.Uploader = (*Client)(nil)

// NewClient creates an upload client. validator is consulted before any
// network traffic; network gates every attempt.
func NewClient(opts Options, validator URIValidator, network report.ConnectivityMonitor, logger report.Logger) *Client {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = timerSleep
	}
	if logger == nil {
		logger = report.NewNopLogger()
	}
	return &Client{
		opts:      opts,
		validator: validator,
		network:   network,
		logger:    logger,
		client:    httpClient,
		sleep:     sleep,
	}
}

// strategy is one way of encoding the asset into a multipart body.
// Adding a third encoding is a one-line change to the list in Upload.
type strategy struct {
	name     string
	attempts int
	encode   func(w *multipart.Writer, uri string, data []byte) error
}

// Upload returns the public URL of the uploaded asset. A URI that fails
// validation returns report.ErrSkipUpload; exhausted strategies return the
// last attempt's error.
func (c *Client) Upload(ctx context.Context, uri string) (string, error) {
	if !c.validator.Validate(uri) {
		return "", fmt.Errorf("%w: %s", report.ErrSkipUpload, uri)
	}

	strategies := []strategy{
		{name: "base64", attempts: c.opts.MaxRetries, encode: c.encodeBase64},
		{name: "file-part", attempts: 1, encode: c.encodeFilePart},
	}

	var lastErr error
	for _, s := range strategies {
		for attempt := 1; attempt <= s.attempts; attempt++ {
			if attempt > 1 {
				if err := c.sleep(ctx, c.opts.RetryDelay); err != nil {
					return "", err
				}
			}

			url, err := c.attempt(ctx, s, uri)
			if err == nil {
				c.logger.Info("photo uploaded", "strategy", s.name, "attempt", attempt)
				return url, nil
			}
			lastErr = err
			c.logger.Warn("photo upload attempt failed", "strategy", s.name, "attempt", attempt, "error", err)
		}
	}

	return "", fmt.Errorf("upload failed after all strategies: %w", lastErr)
}

// attempt performs one bounded HTTP upload using the given strategy.
func (c *Client) attempt(ctx context.Context, s strategy, uri string) (string, error) {
	if !c.network.IsOnline(ctx) {
		return "", report.ErrOffline
	}

	data, err := os.ReadFile(localPath(uri))
	if err != nil {
		return "", fmt.Errorf("reading photo: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := s.encode(w, uri, data); err != nil {
		return "", fmt.Errorf("encoding photo: %w", err)
	}
	if err := w.WriteField("upload_preset", c.opts.UploadPreset); err != nil {
		return "", fmt.Errorf("writing form field: %w", err)
	}
	if err := w.WriteField("folder", c.opts.Folder); err != nil {
		return "", fmt.Errorf("writing form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting upload: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("upload failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("upload response contains no URL")
	}

	return parsed.SecureURL, nil
}

// encodeBase64 writes the asset as a data-URI form field. The most portable
// encoding across platforms.
func (c *Client) encodeBase64(w *multipart.Writer, _ string, data []byte) error {
	field := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
	return w.WriteField("file", field)
}

// encodeFilePart writes the asset as a native multipart file part.
func (c *Client) encodeFilePart(w *multipart.Writer, uri string, data []byte) error {
	h := make(textproto.MIMEHeader)
	name := fmt.Sprintf("offline_report_%d.jpg", time.Now().UnixMilli())
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", "image/jpeg")

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

// timerSleep waits for d or until ctx is cancelled.
func timerSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// localPath strips URI schemes that map onto plain filesystem paths.
func localPath(uri string) string {
	if after, ok := strings.CutPrefix(uri, "file://"); ok {
		return after
	}
	if after, ok := strings.CutPrefix(uri, "content://"); ok {
		return after
	}
	return uri
}
