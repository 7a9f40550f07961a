package router // package router defines how HTTP routes are registered for the API

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/iliyamo/resource-router/internal/handler"
	"github.com/iliyamo/resource-router/internal/openapi"
)

// APIInfo heads the generated OpenAPI document.
var APIInfo = openapi.Info{Title: "resource-router", Version: "1.0.0"}

// RegisterRoutes registers the service endpoints that need no token: the
// health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db *gorm.DB) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterResources builds the generated resources, mounts them with the
// given route middleware and serves their OpenAPI document. A resource that
// cannot be built stops registration with its configuration error.
func RegisterResources(e *echo.Echo, res handler.Resources, mw ...echo.MiddlewareFunc) error {
	users, err := handler.NewUserRouter(res)
	if err != nil {
		return fmt.Errorf("user resource: %w", err)
	}
	reminders, err := handler.NewReminderRouter(res)
	if err != nil {
		return fmt.Errorf("reminder resource: %w", err)
	}

	users.Mount(e, mw...)
	reminders.Mount(e, mw...)

	doc := openapi.Build(APIInfo, users, reminders)
	yamlDoc, err := openapi.YAMLHandler(doc)
	if err != nil {
		return fmt.Errorf("openapi yaml: %w", err)
	}
	e.GET("/openapi.json", openapi.JSONHandler(doc))
	e.GET("/openapi.yaml", yamlDoc)
	return nil
}
