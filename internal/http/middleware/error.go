package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joaquinmulet/mistral-pdf-convert/internal/models"
	"go.uber.org/zap"
)

// ErrorHandler recovers from panics in downstream handlers and answers
// with the standard failure envelope. The panic detail stays in the
// server log only.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("method", ctx.Request.Method),
		)

		ctx.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Ocurrió un error inesperado en el servidor.",
		})
	})
}
