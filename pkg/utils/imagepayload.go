package utils

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

const defaultImageMime = "image/jpeg"

// NormalizeImagePayload turns one raw provider image entry into its
// base64 content and declared media type. Three input variants exist:
//
//  1. a data-URL string: "data:<mime>;base64,<payload>"
//  2. a bare base64 string (no scheme prefix)
//  3. an object exposing content/mime fields directly
//
// Anything else is a decode error; callers drop such entries with a
// warning rather than failing the request.
func NormalizeImagePayload(raw json.RawMessage) (content, mimeType string, err error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return normalizeImageString(s)
	}

	var obj struct {
		ID            string `json:"id"`
		ImageBase64   string `json:"image_base64"`
		Content       string `json:"content"`
		ContentBase64 string `json:"content_base64"`
		MimeType      string `json:"mime_type"`
		Mime          string `json:"mime"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", "", fmt.Errorf("image entry is neither string nor object: %w", err)
	}

	payload := obj.ImageBase64
	if payload == "" {
		payload = obj.Content
	}
	if payload == "" {
		payload = obj.ContentBase64
	}
	if payload == "" {
		return "", "", fmt.Errorf("image object has no content field")
	}

	content, mimeType, err = normalizeImageString(payload)
	if err != nil {
		return "", "", err
	}

	// An explicit mime field on the object wins over the default.
	if declared := firstNonEmpty(obj.MimeType, obj.Mime); declared != "" && !strings.HasPrefix(payload, "data:") {
		mimeType = declared
	}
	return content, mimeType, nil
}

// normalizeImageString handles the two string variants: data URL and
// bare base64.
func normalizeImageString(s string) (content, mimeType string, err error) {
	if strings.HasPrefix(s, "data:") {
		header, payload, found := strings.Cut(s, ",")
		if !found {
			return "", "", fmt.Errorf("data URL has no comma separator")
		}
		mimeType = parseDataURLMime(header)
		if err := validateBase64(payload); err != nil {
			return "", "", err
		}
		return payload, mimeType, nil
	}

	if err := validateBase64(s); err != nil {
		return "", "", err
	}
	return s, defaultImageMime, nil
}

// parseDataURLMime extracts the media type from the segment before the
// comma of a data URL ("data:image/png;base64").
func parseDataURLMime(header string) string {
	declared := strings.TrimPrefix(header, "data:")
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = declared[:i]
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "" {
		return defaultImageMime
	}
	return mediaType
}

func validateBase64(s string) error {
	if s == "" {
		return fmt.Errorf("empty base64 payload")
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return fmt.Errorf("invalid base64 payload: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
