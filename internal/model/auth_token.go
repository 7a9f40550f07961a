package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is an API credential stored in the `auth_token` table.
// Clients present it as `Authorization: Bearer <id>`; the id is a
// random UUID v4 and the lookup is an exact match on it.
//
// Fields:
//  ID        – token value and primary key.
//  Title     – short human label (who or what holds the token).
//  CreatedAt – creation timestamp.
//  UpdatedAt – timestamp of last update.
type AuthToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"` // auth_token.id
	Title     string    `json:"title" gorm:"size:16;not null"`      // auth_token.title
	CreatedAt time.Time `json:"created_at"`                         // auth_token.created_at
	UpdatedAt time.Time `json:"updated_at"`                         // auth_token.updated_at
}

func (AuthToken) TableName() string { return "auth_token" }

// String returns the title, never the token value, so a token can be logged.
func (t *AuthToken) String() string { return t.Title }
