package ocr

import "encoding/json"

// ProcessOptions controls a single OCR run.
type ProcessOptions struct {
	// IncludeImages asks the provider to return embedded page images
	// as base64 alongside the markdown.
	IncludeImages bool
	// DeleteAfterProcessing removes the provider-side copy of the
	// uploaded file once the run finishes.
	DeleteAfterProcessing bool
}

// Result is the normalized outcome of one OCR run.
type Result struct {
	Pages     []Page    `json:"pages"`
	Model     string    `json:"model"`
	UsageInfo UsageInfo `json:"usage_info"`
}

// Page is one document page as returned by the provider, in order.
type Page struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
	// Images entries arrive in more than one encoding (data-URL
	// string, bare base64 string, or an object with content/mime
	// fields), so they stay raw until normalized.
	Images []json.RawMessage `json:"images,omitempty"`
}

type UsageInfo struct {
	PagesProcessed int  `json:"pages_processed"`
	DocSizeBytes   *int `json:"doc_size_bytes"`
}

// uploadResponse is the provider's answer to a file upload.
type uploadResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}

// signedURLResponse carries the short-lived URL for an uploaded file.
type signedURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// ocrRequest is the body of POST /v1/ocr.
type ocrRequest struct {
	Model              string      `json:"model"`
	Document           documentURL `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type documentURL struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}
