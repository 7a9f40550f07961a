// Package auth authenticates requests to generated resource routes.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iliyamo/resource-router/internal/crud"
	"github.com/iliyamo/resource-router/internal/model"
	"github.com/iliyamo/resource-router/internal/repository"
)

// ContextKey is the echo context key the authenticated token is stored under.
const ContextKey = "auth_token"

// headerPattern accepts exactly "Bearer " followed by a lower-case UUID.
var headerPattern = regexp.MustCompile(`^Bearer [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// TokenStore looks a token up by its exact value.
type TokenStore interface {
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.AuthToken, error)
}

// Bearer authenticates `Authorization: Bearer <token>` headers against the
// auth_token table. Malformed headers are rejected without a lookup.
type Bearer struct {
	Store TokenStore
}

func NewBearer(store TokenStore) *Bearer { return &Bearer{Store: store} }

// Authenticate returns the *model.AuthToken of the request and stores it on
// the context under ContextKey.
func (b *Bearer) Authenticate(c echo.Context, tx *gorm.DB) (any, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !headerPattern.MatchString(header) {
		return nil, crud.ErrUnauthorized
	}
	id, err := uuid.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, crud.ErrUnauthorized
	}

	tok, err := b.Store.FindByID(tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, crud.ErrUnauthorized
		}
		return nil, fmt.Errorf("token lookup: %w", err)
	}
	c.Set(ContextKey, tok)
	return tok, nil
}

// TokenFrom returns the token stored by Authenticate, or nil.
func TokenFrom(c echo.Context) *model.AuthToken {
	tok, _ := c.Get(ContextKey).(*model.AuthToken)
	return tok
}
