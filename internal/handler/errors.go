package handler // handler holds the HTTP-facing pieces of the service

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iliyamo/resource-router/internal/crud"
	"github.com/iliyamo/resource-router/internal/repository"
)

// HTTPErrorHandler maps errors returned by handlers onto status codes. The
// generated resource handlers return domain errors unchanged and rely on it.
//
//	crud.ErrUnauthorized     -> 401 with WWW-Authenticate: Bearer
//	repository.ErrNotFound   -> 404
//	*crud.ValidationError    -> 422 with field details
//	gorm.ErrDuplicatedKey    -> 409
//	*echo.HTTPError          -> its own code
//	anything else            -> 500
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed { // headers already sent, nothing left to do
			return
		}

		status, body := classify(err)
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		if status >= http.StatusInternalServerError {
			log.Error("unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

func classify(err error) (int, echo.Map) {
	var (
		verr *crud.ValidationError
		herr *echo.HTTPError
	)
	switch {
	case errors.Is(err, crud.ErrUnauthorized):
		return http.StatusUnauthorized, echo.Map{"error": "unauthorized"}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, echo.Map{"error": "not found"}
	case errors.As(err, &verr):
		body := echo.Map{"error": verr.Message}
		if len(verr.Details) > 0 {
			body["details"] = verr.Details
		}
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, echo.Map{"error": "already exists"}
	case errors.As(err, &herr):
		msg := herr.Message
		if m, ok := msg.(string); ok {
			return herr.Code, echo.Map{"error": m}
		}
		return herr.Code, echo.Map{"error": http.StatusText(herr.Code)}
	default:
		return http.StatusInternalServerError, echo.Map{"error": "internal server error"}
	}
}
