package handler

import (
	"go.uber.org/zap"

	"github.com/iliyamo/resource-router/internal/crud"
	"github.com/iliyamo/resource-router/internal/schema"
	"github.com/iliyamo/resource-router/internal/validation"
)

// Resources carries the collaborators every generated resource shares.
type Resources struct {
	Sessions     crud.SessionProvider
	Auth         crud.AuthProvider
	Logger       *zap.Logger
	Validator    *validation.Validator
	Publisher    crud.ChangePublisher // nil disables change events
	StrictDelete bool
}

func (r Resources) config(prefix string, schemas schema.Overrides) crud.Config {
	return crud.Config{
		Prefix:       prefix,
		Sessions:     r.Sessions,
		Auth:         r.Auth,
		Schemas:      schemas,
		Logger:       r.Logger,
		Validator:    r.Validator,
		Publisher:    r.Publisher,
		StrictDelete: r.StrictDelete,
	}
}
