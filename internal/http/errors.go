package http

import (
	"errors"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/http/dto"
	"github.com/civic-reports/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler maps application errors to HTTP responses. Handlers return
// errors as-is; everything outside the apperr taxonomy becomes an opaque 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Error:     fiberErr.Message,
				RequestID: requestID(c),
			})
		}

		appErr := apperr.From(err)
		if appErr.Type == apperr.TypeInternal {
			log.Error("request failed",
				zap.String("request_id", requestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(appErr.Code).JSON(dto.ErrorResponse{
			Error:     appErr.Message,
			Type:      string(appErr.Type),
			RequestID: requestID(c),
		})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.CtxRequestID).(string)
	return id
}
