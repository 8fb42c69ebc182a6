package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const (
	ErrorCodeValidation   = "validation_error"
	ErrorCodeUnauthorized = "unauthorized"
	ErrorCodeUpstream     = "upstream_error"
	ErrorCodeLedger       = "ledger_error"
	ErrorCodeTimeout      = "timeout"
	ErrorCodeInternal     = "internal_error"
)

func JSONError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func AbortJSONError(c *gin.Context, status int, code, message string) {
	JSONError(c, status, code, message)
	c.Abort()
}

// abortServiceError переводит ошибку ядра в HTTP-ответ
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrUnknownSector):
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, err.Error())
	case errors.Is(err, model.ErrCompletion):
		slog.Warn("completion service failed", "path", c.FullPath(), "error", err)
		AbortJSONError(c, http.StatusBadGateway, ErrorCodeUpstream, "text generation service failed")
	case errors.Is(err, model.ErrLedgerWrite):
		slog.Error("ledger write failed", "path", c.FullPath(), "error", err)
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeLedger, "action was not recorded, please retry")
	case errors.Is(err, context.DeadlineExceeded):
		AbortJSONError(c, http.StatusGatewayTimeout, ErrorCodeTimeout, "request timed out")
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
	}
}
