package handler

import (
	"context"
	"net/http" // status codes
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Health is the health-check endpoint used by load balancers and monitoring.
// It answers 200 "ok" while the database answers a ping and 503 otherwise.
func Health(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return c.String(http.StatusServiceUnavailable, "database unavailable")
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.String(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.String(http.StatusOK, "ok") // plain text, like the probes expect
	}
}
