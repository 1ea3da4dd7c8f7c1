package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/models"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/ocr"
	"github.com/joaquinmulet/mistral-pdf-convert/pkg/utils"
	"go.uber.org/zap"
)

// === REQUEST VALIDATION ===

// validateRequest checks the multipart form before anything touches
// the external client. Violation precedence: api_key first, then
// pdf_file. When it returns ok=false a response has been written.
func (h *OCRHandler) validateRequest(c *gin.Context) (apiKey string, file multipart.File, header *multipart.FileHeader, ok bool) {
	if err := c.Request.ParseMultipartForm(h.config.Storage.MaxUploadSize); err != nil {
		h.logger.Warn("Request is not a valid multipart form", zap.Error(err))
		h.respondError(c, http.StatusUnprocessableEntity, msgAPIKeyRequired)
		return "", nil, nil, false
	}

	apiKey = c.PostForm(apiKeyParamKey)
	if apiKey == "" {
		h.logger.Warn("Validation failed: missing or empty api_key")
		h.respondError(c, http.StatusUnprocessableEntity, msgAPIKeyRequired)
		return "", nil, nil, false
	}

	file, header, err := c.Request.FormFile(pdfFileParamKey)
	if err != nil {
		// A file part whose filename is the empty string is parsed as
		// an ordinary form value, which is how "file without a name"
		// shows up here. That one case answers with the framework's
		// default error body instead of the envelope.
		if h.hasNamelessFilePart(c) {
			h.logger.Warn("Uploaded PDF has no filename")
			c.JSON(http.StatusBadRequest, gin.H{"error": msgFileNeedsName})
			return "", nil, nil, false
		}
		h.logger.Warn("Validation failed: missing pdf_file", zap.Error(err))
		h.respondError(c, http.StatusUnprocessableEntity, msgPDFFileRequired)
		return "", nil, nil, false
	}

	if header.Filename == "" {
		file.Close()
		h.logger.Warn("Uploaded PDF has no filename")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgFileNeedsName})
		return "", nil, nil, false
	}

	return apiKey, file, header, true
}

func (h *OCRHandler) hasNamelessFilePart(c *gin.Context) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, present := form.Value[pdfFileParamKey]
	return present
}

// === FILE STAGING ===

// stageUpload copies the uploaded stream to a fresh temp file and
// returns its path.
func (h *OCRHandler) stageUpload(file multipart.File) (string, error) {
	path := filepath.Join(h.config.Storage.TempDir, fmt.Sprintf("ocr_%s.pdf", uuid.New().String()))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("copy upload to temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return path, nil
}

// removeStagedFile deletes the temp file. Cleanup failures are logged,
// never surfaced to the caller.
func (h *OCRHandler) removeStagedFile(path string) {
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			h.logger.Error("Failed to remove staged file",
				zap.String("path", path), zap.Error(err))
		}
		return
	}
	h.logger.Info("Staged file removed", zap.String("path", path))
}

func (h *OCRHandler) closeUpload(file multipart.File, filename string) {
	if file == nil {
		return
	}
	if err := file.Close(); err != nil {
		h.logger.Warn("Failed to close uploaded file",
			zap.String("file", filename), zap.Error(err))
	}
}

// === OCR EXECUTION ===

// runOCR acquires a client scoped to this call and releases it before
// returning, whatever Process did.
func (h *OCRHandler) runOCR(ctx context.Context, apiKey, path string, includeImages bool) (*ocr.Result, error) {
	client, err := h.newClient(apiKey)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.Process(ctx, path, ocr.ProcessOptions{
		IncludeImages:         includeImages,
		DeleteAfterProcessing: true,
	})
}

// === RESPONSE BUILDING ===

func (h *OCRHandler) buildOCRResponse(fileName string, result *ocr.Result, includeImages bool) models.OCRResponse {
	pages := make([]models.Page, 0, len(result.Pages))
	var texts []string

	for _, p := range result.Pages {
		page := models.Page{
			PageNumber: p.Index,
			Markdown:   p.Markdown,
		}
		if includeImages && len(p.Images) > 0 {
			page.Images = h.decodePageImages(fileName, p.Index, p.Images)
		}
		pages = append(pages, page)

		if p.Markdown != "" {
			texts = append(texts, p.Markdown)
		}
	}

	return models.OCRResponse{
		Success:          true,
		FileName:         fileName,
		Pages:            pages,
		ConcatenatedText: strings.Join(texts, "\n\n"),
	}
}

// decodePageImages normalizes each raw image entry; entries that fail
// to decode are dropped with a warning.
func (h *OCRHandler) decodePageImages(fileName string, pageIndex int, raw []json.RawMessage) []models.PageImage {
	images := make([]models.PageImage, 0, len(raw))
	for i, entry := range raw {
		content, mimeType, err := utils.NormalizeImagePayload(entry)
		if err != nil {
			h.logger.Warn("Dropping undecodable page image",
				zap.String("file", fileName),
				zap.Int("page", pageIndex),
				zap.Int("image", i),
				zap.Error(err),
			)
			continue
		}
		images = append(images, models.PageImage{
			ContentBase64: content,
			MimeType:      mimeType,
		})
	}
	if len(images) == 0 {
		return nil
	}
	return images
}

// === ERROR MAPPING ===

// respondOCRError maps the client's typed failures onto HTTP statuses
// and the failure envelope. Unrecognized errors fall through to the
// generic 500.
func (h *OCRHandler) respondOCRError(c *gin.Context, fileName string, err error) {
	var (
		configErr  *ocr.ConfigurationError
		fileErr    *ocr.FileError
		networkErr *ocr.NetworkError
		apiErr     *ocr.APIError
	)

	switch {
	case errors.As(err, &configErr):
		msg := "Error de configuración del cliente OCR: " + configErr.Message
		h.logger.Error("OCR client configuration error",
			zap.String("file", fileName), zap.Error(err))
		h.respondError(c, http.StatusBadRequest, msg)

	case errors.As(err, &fileErr):
		h.logger.Error("OCR client file error",
			zap.String("file", fileName), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, msgFileError)

	case errors.As(err, &networkErr):
		h.logger.Error("OCR network error",
			zap.String("file", fileName), zap.Error(err))
		h.respondError(c, http.StatusGatewayTimeout, msgNetworkError)

	case errors.As(err, &apiErr):
		h.respondAPIError(c, fileName, apiErr)

	default:
		h.logger.Error("Unexpected error processing OCR request",
			zap.String("file", fileName),
			zap.Error(err),
			zap.Stack("stack"),
		)
		h.respondError(c, http.StatusInternalServerError, msgUnexpected)
	}
}

func (h *OCRHandler) respondAPIError(c *gin.Context, fileName string, apiErr *ocr.APIError) {
	h.logger.Error("OCR provider API error",
		zap.String("file", fileName),
		zap.Int("status", apiErr.StatusCode),
		zap.String("details", apiErr.Details),
	)

	status := apiErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	var msg string
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		msg = msgInvalidAPIKey
	case apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity:
		msg = "Error de la API de Mistral (solicitud o archivo no procesable): " + apiErr.Details
	case apiErr.StatusCode >= http.StatusInternalServerError:
		msg = "Error del servidor OCR de Mistral: " + apiErr.Details
	default:
		msg = fmt.Sprintf("Error de la API de Mistral (%d): %s", status, apiErr.Details)
	}

	h.respondError(c, status, msg)
}

func (h *OCRHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// === UTILITY METHODS ===

func parseBoolParam(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}

// keySuffix returns the last characters of the credential for logging.
// The key itself is never logged.
func keySuffix(apiKey string) string {
	if len(apiKey) < 4 {
		return "..."
	}
	return "..." + apiKey[len(apiKey)-4:]
}
