// Package crud generates the standard REST routes (retrieve, list, create,
// update, partial update, delete) for a persisted model.
//
// A Router is built once per resource. Construction resolves the schema of
// every operation and fails as a whole when anything is missing; afterwards
// the router is read-only and its handlers are safe for concurrent use.
package crud

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iliyamo/resource-router/internal/queue"
	"github.com/iliyamo/resource-router/internal/repository"
	"github.com/iliyamo/resource-router/internal/schema"
	"github.com/iliyamo/resource-router/internal/validation"
)

// SessionProvider opens a database session scoped to one request. The
// session commits when fn returns nil and is always released.
type SessionProvider interface {
	Scope(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AuthProvider verifies the credential of a request and returns the
// principal. It fails with ErrUnauthorized when the credential is missing,
// malformed or unknown.
type AuthProvider interface {
	Authenticate(c echo.Context, tx *gorm.DB) (any, error)
}

// ChangePublisher delivers change events of committed writes.
type ChangePublisher interface {
	PublishChange(ctx context.Context, ev queue.ResourceChangedEvent) error
}

// Registrar is the subset of *echo.Echo and *echo.Group routes are added to.
type Registrar interface {
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
}

// Operation names one generated route.
type Operation string

const (
	OpRetrieve      Operation = "retrieve"
	OpList          Operation = "list"
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpPartialUpdate Operation = "partial_update"
	OpDelete        Operation = "delete"
)

// Config describes one resource.
type Config struct {
	Prefix    string // URL prefix, e.g. "user"
	Sessions  SessionProvider
	Auth      AuthProvider
	Schemas   schema.Overrides
	Logger    *zap.Logger
	Validator *validation.Validator // nil means validation.New()
	Publisher ChangePublisher       // nil disables change events

	// StrictDelete makes DELETE of a missing record fail with
	// repository.ErrNotFound instead of succeeding with 204.
	StrictDelete bool
}

// ResourceDescriptor identifies a mounted resource.
type ResourceDescriptor struct {
	URLPrefix      string
	ModelName      string
	IdentifierKind IdentifierKind
}

// RouteEntry is one generated route. ResponseSchema is nil for delete and
// RequestSchema is nil for operations without a payload.
type RouteEntry struct {
	Operation      Operation
	Method         string
	Pattern        string
	Handler        echo.HandlerFunc
	RequestSchema  *schema.Schema
	ResponseSchema *schema.Schema
	SuccessStatus  int
}

// Router holds the generated routes of one resource.
type Router[M any, ID Identifier] struct {
	descriptor ResourceDescriptor
	schemas    schema.Set
	routes     []RouteEntry
}

// New resolves the schemas of the resource and builds its six routes. It
// returns a *schema.ConfigurationError, and no router, when the schema set
// is incomplete or a required collaborator is missing.
func New[M any, ID Identifier](cfg Config) (*Router[M, ID], error) {
	prefix := strings.Trim(cfg.Prefix, "/")
	var missing []string
	if prefix == "" {
		missing = append(missing, "prefix")
	}
	if cfg.Sessions == nil {
		missing = append(missing, "sessions")
	}
	if cfg.Auth == nil {
		missing = append(missing, "auth")
	}
	if cfg.Logger == nil {
		missing = append(missing, "logger")
	}
	if len(missing) > 0 {
		return nil, &schema.ConfigurationError{Direction: "resource", Missing: missing}
	}

	set, err := schema.Resolve(cfg.Schemas)
	if err != nil {
		return nil, err
	}

	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}

	h := &handler[M, ID]{
		resource:     prefix,
		schemas:      set,
		sessions:     cfg.Sessions,
		auth:         cfg.Auth,
		repo:         repository.NewResource[M, ID](),
		log:          cfg.Logger.With(zap.String("resource", prefix)),
		validate:     v,
		publisher:    cfg.Publisher,
		strictDelete: cfg.StrictDelete,
	}

	r := &Router[M, ID]{
		descriptor: ResourceDescriptor{
			URLPrefix:      prefix,
			ModelName:      reflect.TypeOf((*M)(nil)).Elem().Name(),
			IdentifierKind: KindOf[ID](),
		},
		schemas: set,
	}
	r.routes = []RouteEntry{
		{OpRetrieve, http.MethodGet, RetrieveURLPattern(prefix), h.retrieve, nil, set.RetrieveResponse, http.StatusOK},
		{OpList, http.MethodGet, ListURLPattern(prefix), h.list, nil, set.ListResponse, http.StatusOK},
		{OpCreate, http.MethodPost, CreateURLPattern(prefix), h.create, set.CreateRequest, set.CreateResponse, http.StatusCreated},
		{OpUpdate, http.MethodPut, UpdateURLPattern(prefix), h.update, set.UpdateRequest, set.UpdateResponse, http.StatusOK},
		{OpPartialUpdate, http.MethodPatch, PartialUpdateURLPattern(prefix), h.partialUpdate, set.PartialUpdateRequest, set.PartialUpdateResponse, http.StatusOK},
		{OpDelete, http.MethodDelete, DeleteURLPattern(prefix), h.delete, nil, nil, http.StatusNoContent},
	}
	return r, nil
}

func (r *Router[M, ID]) Descriptor() ResourceDescriptor { return r.descriptor }

func (r *Router[M, ID]) Schemas() schema.Set { return r.schemas }

// Routes returns a copy of the generated route table.
func (r *Router[M, ID]) Routes() []RouteEntry {
	out := make([]RouteEntry, len(r.routes))
	copy(out, r.routes)
	return out
}

// Mount registers every route on reg with the given route middleware.
func (r *Router[M, ID]) Mount(reg Registrar, mw ...echo.MiddlewareFunc) []*echo.Route {
	out := make([]*echo.Route, 0, len(r.routes))
	for _, e := range r.routes {
		rt := reg.Add(e.Method, EchoPath(e.Pattern), e.Handler, mw...)
		rt.Name = r.descriptor.URLPrefix + "." + string(e.Operation)
		out = append(out, rt)
	}
	return out
}
