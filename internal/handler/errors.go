package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
)

// ErrorHandler renders errors returned by handlers as the standard error
// envelope. Internal causes are logged, never sent.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			if ae.Kind == apperr.KindInternal {
				logger.Error().Err(err).
					Str("method", c.Method()).
					Str("route", endpointLabel(c)).
					Msg("request failed")
			}
			return middleware.ErrorResponse(c, ae.Kind.Status(), ae.Code(), ae.Message)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return middleware.ErrorResponse(c, fe.Code, fiberErrorCode(fe.Code), fe.Message)
		}

		logger.Error().Err(err).Str("method", c.Method()).Str("route", endpointLabel(c)).Msg("unhandled error")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// errorStatus is the status ErrorHandler will send for err.
func errorStatus(err error) int {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Kind.Status()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return "REQUEST_ERROR"
}

func invalidField(c fiber.Ctx, msg string) error {
	return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", msg)
}

func invalidBody(c fiber.Ctx) error {
	return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
}
