package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iliyamo/resource-router/internal/model"
)

// maxTokenTitle mirrors the auth_token.title column size.
const maxTokenTitle = 16

// TokenRepo persists and looks up API bearer tokens.
type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

// FindByID returns the token whose id equals id exactly. It reads through tx
// when given so the lookup shares the caller's session.
func (r *TokenRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.AuthToken, error) {
	if tx == nil {
		tx = r.db
	}
	var tok model.AuthToken
	if err := tx.Where("id = ?", id).Take(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tok, nil
}

// Issue creates a token with a fresh random UUID v4.
func (r *TokenRepo) Issue(ctx context.Context, title string) (*model.AuthToken, error) {
	if title == "" || len(title) > maxTokenTitle {
		return nil, fmt.Errorf("token title must be 1-%d characters", maxTokenTitle)
	}
	tok := &model.AuthToken{ID: uuid.New(), Title: title}
	if err := r.db.WithContext(ctx).Create(tok).Error; err != nil {
		return nil, err
	}
	return tok, nil
}

// List returns all tokens, oldest first.
func (r *TokenRepo) List(ctx context.Context) ([]model.AuthToken, error) {
	out := make([]model.AuthToken, 0)
	if err := r.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Revoke deletes a token. It returns ErrNotFound when nothing was deleted.
func (r *TokenRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AuthToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
