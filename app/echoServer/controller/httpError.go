package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"library/app/echoServer/validation"
	"library/util/apperr"
)

// Status maps an error kind onto an HTTP status.
func Status(err error) int {
	switch apperr.Code(err) {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InvalidState, apperr.Unavailable, apperr.Conflict:
		return http.StatusConflict
	case apperr.BadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes the response for a service error. Internal failures are
// logged and answered without details.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Error(op+" failed",
			"err", err,
			"req_id", rid,
			"path", c.Path(),
			"method", c.Request().Method,
		)
		return c.JSON(status, echo.Map{"message": "internal error"})
	}

	log.Warn(op+" rejected", "code", apperr.Code(err), "err", err, "req_id", rid)
	return c.JSON(status, echo.Map{
		"message": apperr.Message(err),
		"code":    apperr.Code(err),
	})
}

// Invalid answers a bind or validation failure with 400.
func Invalid(c echo.Context, log *slog.Logger, err error) error {
	log.Warn("invalid request", "path", c.Path(), "err", err)
	if fields := validation.Fields(err); fields != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  fields,
		})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
}

// ParamID parses a positive int64 path parameter.
func ParamID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// BadID answers an unparseable path id.
func BadID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
}
