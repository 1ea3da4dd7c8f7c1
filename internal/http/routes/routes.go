package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/config"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/http/handlers"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/http/middleware"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/models"
	"go.uber.org/zap"
)

type Router struct {
	ocrHandler *handlers.OCRHandler
	logger     *zap.Logger
	config     *config.Config
}

func NewRouter(
	ocrHandler *handlers.OCRHandler,
	logger *zap.Logger,
	config *config.Config,
) *Router {
	return &Router{
		ocrHandler: ocrHandler,
		logger:     logger,
		config:     config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.config.CORS))
	router.Use(middleware.SecurityHeaders())

	api := router.Group("/api")
	{
		api.POST("/ocr-pdf", r.ocrHandler.ProcessPDF)
		api.GET("/health", r.ocrHandler.HealthCheck)
	}

	router.GET("/hora", r.ocrHandler.Hora)

	r.mountFrontend(router)

	return router
}

// mountFrontend serves the prebuilt front-end bundle from the
// configured directory with index-document fallback. API paths that
// reach NoRoute answer with the JSON envelope instead.
func (r *Router) mountFrontend(router *gin.Engine) {
	dir := r.config.Storage.FrontendDir

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		r.logger.Warn("Frontend directory not found, static assets disabled",
			zap.String("dir", dir))
		router.NoRoute(r.notFoundJSON)
		return
	}

	r.logger.Info("Serving frontend assets", zap.String("dir", dir))
	router.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			r.notFoundJSON(ctx)
			return
		}
		serveStatic(ctx, dir)
	})
}

func (r *Router) notFoundJSON(ctx *gin.Context) {
	ctx.JSON(http.StatusNotFound, models.APIResponse{
		Success: false,
		Error:   "Recurso no encontrado.",
	})
}

// serveStatic answers with the requested file when it exists inside
// root, falling back to index.html for anything else (SPA routing).
func serveStatic(ctx *gin.Context, root string) {
	reqPath := filepath.Clean(ctx.Request.URL.Path)
	full := filepath.Join(root, reqPath)

	// Clean+Join keeps the path inside root; reject anything that
	// still escapes.
	if !strings.HasPrefix(full, filepath.Clean(root)) {
		ctx.String(http.StatusNotFound, "not found")
		return
	}

	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		ctx.File(full)
		return
	}

	ctx.File(filepath.Join(root, "index.html"))
}
