package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/config"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/models"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/ocr"
	"go.uber.org/zap"
)

const (
	apiKeyParamKey        = "api_key"
	pdfFileParamKey       = "pdf_file"
	includeImagesParamKey = "include_images"

	pdfContentType = "application/pdf"
)

// User-visible messages. The front-end test suite pins these exact
// strings, so they stay in Spanish like the rest of the product copy.
const (
	msgAPIKeyRequired  = "El campo 'api_key' es requerido o inválido."
	msgPDFFileRequired = "El campo 'pdf_file' es requerido o inválido."
	msgFileNeedsName   = "El archivo PDF debe tener un nombre."
	msgFileError       = "Error de archivo interno del servidor al procesar para OCR."
	msgNetworkError    = "Error de red o timeout al contactar el servicio OCR de Mistral."
	msgInvalidAPIKey   = "API Key de Mistral AI inválida o no autorizada."
	msgUnexpected      = "Ocurrió un error inesperado en el servidor."
)

// OCRService is the scoped handle the endpoint needs from the external
// OCR client: one Process call, then Close.
type OCRService interface {
	Process(ctx context.Context, filePath string, opts ocr.ProcessOptions) (*ocr.Result, error)
	Close()
}

// OCRClientFactory builds a client for a caller-supplied credential.
// The handler acquires one per request and always releases it.
type OCRClientFactory func(apiKey string) (OCRService, error)

// DefaultClientFactory wires the real Mistral client with the
// configured timeout, base URL and model.
func DefaultClientFactory(cfg *config.Config, logger *zap.Logger) OCRClientFactory {
	return func(apiKey string) (OCRService, error) {
		return ocr.New(apiKey,
			ocr.WithTimeout(cfg.OCR.Timeout),
			ocr.WithBaseURL(cfg.OCR.BaseURL),
			ocr.WithModel(cfg.OCR.Model),
			ocr.WithLogger(logger),
		)
	}
}

type OCRHandler struct {
	newClient OCRClientFactory
	logger    *zap.Logger
	config    *config.Config
}

func NewOCRHandler(
	newClient OCRClientFactory,
	logger *zap.Logger,
	config *config.Config,
) *OCRHandler {
	return &OCRHandler{
		newClient: newClient,
		logger:    logger,
		config:    config,
	}
}

// === MAIN API ENDPOINTS ===

// ProcessPDF handles POST /api/ocr-pdf: validate, stage the upload to
// a temp file, run OCR through a request-scoped client, and answer
// with the page contents. The staged file is removed on every exit.
func (h *OCRHandler) ProcessPDF(c *gin.Context) {
	apiKey, file, header, ok := h.validateRequest(c)
	if !ok {
		return
	}
	defer h.closeUpload(file, header.Filename)

	if declared := header.Header.Get("Content-Type"); declared != pdfContentType {
		h.logger.Warn("Uploaded file has unexpected content type, processing anyway",
			zap.String("file", header.Filename),
			zap.String("content_type", declared),
		)
	}

	includeImages := parseBoolParam(c.PostForm(includeImagesParamKey))

	tmpPath, err := h.stageUpload(file)
	if err != nil {
		h.logger.Error("Failed to stage upload",
			zap.String("file", header.Filename), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, msgUnexpected)
		return
	}
	defer h.removeStagedFile(tmpPath)

	h.logger.Info("PDF staged for OCR",
		zap.String("file", header.Filename),
		zap.String("staged_path", tmpPath),
		zap.String("api_key_suffix", keySuffix(apiKey)),
		zap.Bool("include_images", includeImages),
	)

	result, err := h.runOCR(c.Request.Context(), apiKey, tmpPath, includeImages)
	if err != nil {
		h.respondOCRError(c, header.Filename, err)
		return
	}

	response := h.buildOCRResponse(header.Filename, result, includeImages)
	h.logger.Info("OCR request completed",
		zap.String("file", header.Filename),
		zap.Int("pages", len(response.Pages)),
		zap.Int("text_length", len(response.ConcatenatedText)),
	)
	c.JSON(http.StatusOK, response)
}

// Hora returns the current server timestamp.
func (h *OCRHandler) Hora(c *gin.Context) {
	now := time.Now()
	c.JSON(http.StatusOK, models.TimeResponse{
		Hora:      now.Format(time.RFC3339),
		Timestamp: now.Unix(),
	})
}

// HealthCheck reports basic liveness.
func (h *OCRHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
