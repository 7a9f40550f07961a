package database

import (
	"context"

	"gorm.io/gorm"
)

// Sessions hands out request-scoped database sessions.
type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions { return &Sessions{db: db} }

// Scope runs fn inside a transaction bound to ctx. The transaction commits
// when fn returns nil and rolls back on an error or a panic; either way the
// connection goes back to the pool before Scope returns.
func (s *Sessions) Scope(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
