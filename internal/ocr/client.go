package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.mistral.ai"
	defaultModel   = "mistral-ocr-latest"
	defaultTimeout = 300 * time.Second

	uploadPurpose     = "ocr"
	signedURLExpiryHr = "24"
)

// Client talks to the Mistral OCR API on behalf of a single caller.
// It is scoped to one credential; construct it per request and release
// it with Close when the request is done.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client for the given API key. An empty key is a
// configuration error; the key is otherwise passed through untouched
// and validated only by the provider.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ConfigurationError{Message: "api key must not be empty"}
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	return c, nil
}

// Close releases the client's connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Process runs OCR over the file at filePath: upload, signed URL, OCR
// call, and (optionally) provider-side deletion of the upload.
func (c *Client) Process(ctx context.Context, filePath string, opts ProcessOptions) (*Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &FileError{Path: filePath, Err: err}
	}

	uploaded, err := c.uploadFile(ctx, filepath.Base(filePath), data)
	if err != nil {
		return nil, err
	}
	c.logger.Info("File uploaded to OCR provider",
		zap.String("file_id", uploaded.ID),
		zap.Int("size_bytes", len(data)),
	)

	if opts.DeleteAfterProcessing {
		defer c.deleteFile(ctx, uploaded.ID)
	}

	signed, err := c.signedURL(ctx, uploaded.ID)
	if err != nil {
		return nil, err
	}

	result, err := c.runOCR(ctx, signed.URL, opts.IncludeImages)
	if err != nil {
		return nil, err
	}

	c.logger.Info("OCR completed",
		zap.String("file_id", uploaded.ID),
		zap.Int("pages", len(result.Pages)),
	)
	return result, nil
}

func (c *Client) uploadFile(ctx context.Context, filename string, data []byte) (*uploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", uploadPurpose); err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &FileError{Path: filename, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files", &body)
	if err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var uploaded uploadResponse
	if err := c.do(req, "upload", &uploaded); err != nil {
		return nil, err
	}
	return &uploaded, nil
}

func (c *Client) signedURL(ctx context.Context, fileID string) (*signedURLResponse, error) {
	url := fmt.Sprintf("%s/v1/files/%s/url?expiry=%s", c.baseURL, fileID, signedURLExpiryHr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Op: "signed-url", Err: err}
	}

	var signed signedURLResponse
	if err := c.do(req, "signed-url", &signed); err != nil {
		return nil, err
	}
	return &signed, nil
}

func (c *Client) runOCR(ctx context.Context, documentURLStr string, includeImages bool) (*Result, error) {
	payload, err := json.Marshal(ocrRequest{
		Model: c.model,
		Document: documentURL{
			Type:        "document_url",
			DocumentURL: documentURLStr,
		},
		IncludeImageBase64: includeImages,
	})
	if err != nil {
		return nil, &NetworkError{Op: "ocr", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ocr", bytes.NewReader(payload))
	if err != nil {
		return nil, &NetworkError{Op: "ocr", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var result Result
	if err := c.do(req, "ocr", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// deleteFile removes the provider-side copy of an upload. Best effort:
// a failed deletion is logged, never surfaced.
func (c *Client) deleteFile(ctx context.Context, fileID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1/files/"+fileID, nil)
	if err != nil {
		c.logger.Warn("Failed to build provider file deletion request",
			zap.String("file_id", fileID), zap.Error(err))
		return
	}
	if err := c.do(req, "delete", nil); err != nil {
		c.logger.Warn("Failed to delete provider-side file",
			zap.String("file_id", fileID), zap.Error(err))
		return
	}
	c.logger.Info("Provider-side file deleted", zap.String("file_id", fileID))
}

// do executes a request with auth, classifying transport failures as
// NetworkError and non-2xx answers as APIError. When out is non-nil
// the 2xx body is decoded into it.
func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Details: errorDetails(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Details: "malformed provider response: " + err.Error()}
		}
	}
	return nil
}

// errorDetails extracts the most useful detail string from a provider
// error body.
func errorDetails(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Detail != "":
			return payload.Detail
		case payload.Error != "":
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
