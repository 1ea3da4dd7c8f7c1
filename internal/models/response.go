package models

// APIResponse is the uniform failure envelope: every non-200 answer
// from the API carries {"success": false, "error": "..."}.
type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OCRResponse is the 200 body for /api/ocr-pdf.
type OCRResponse struct {
	Success          bool   `json:"success"`
	FileName         string `json:"fileName"`
	Pages            []Page `json:"pages"`
	ConcatenatedText string `json:"concatenated_text"`
}

// Page carries the extracted content of one document page, in the
// order the provider returned it.
type Page struct {
	PageNumber int         `json:"page_number"`
	Markdown   string      `json:"markdown"`
	Images     []PageImage `json:"images,omitempty"`
}

// PageImage is a normalized embedded image: raw base64 content plus
// the declared media type, regardless of how the provider encoded it.
type PageImage struct {
	ContentBase64 string `json:"content_base64"`
	MimeType      string `json:"mime_type"`
}
