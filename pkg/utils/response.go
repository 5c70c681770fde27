package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
)

// ErrorResponse define la estructura estándar para las respuestas de error.
type ErrorResponse struct {
	Message string              `json:"message"`
	Fields  outcome.FieldErrors `json:"fields,omitempty"`
}

// SendSuccess envía una respuesta exitosa con un payload de datos.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"data": data,
	})
}

// SendError envía una respuesta de error con un formato estandarizado.
func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error": ErrorResponse{
			Message: message,
		},
	})
}

// --- Helpers específicos para errores comunes ---

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendUnauthorized(c *gin.Context, message string) {
	SendError(c, http.StatusUnauthorized, message)
}

func SendForbidden(c *gin.Context, message string) {
	SendError(c, http.StatusForbidden, message)
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func SendConflict(c *gin.Context, message string) {
	SendError(c, http.StatusConflict, message)
}

// SendValidationFailed devuelve 422 con el detalle por campo.
func SendValidationFailed(c *gin.Context, fields outcome.FieldErrors) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error": ErrorResponse{
			Message: "validation failed",
			Fields:  fields,
		},
	})
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}

// SendOutcome traduce un Outcome a HTTP. okStatus se usa para la variante OK.
// El error de almacenamiento se loguea y al cliente sólo le llega un mensaje genérico.
func SendOutcome[T any](c *gin.Context, res outcome.Outcome[T], okStatus int, log *zap.Logger) {
	switch res.Kind {
	case outcome.KindOK:
		if okStatus == http.StatusNoContent {
			c.Status(http.StatusNoContent)
			return
		}
		SendSuccess(c, okStatus, res.Value)
	case outcome.KindValidationFailed:
		SendValidationFailed(c, res.Fields)
	case outcome.KindNotFound:
		SendNotFound(c, "resource not found")
	default:
		log.Error("storage error", zap.String("path", c.Request.URL.Path), zap.Error(res.Err))
		SendInternalServerError(c, "internal error")
	}
}
