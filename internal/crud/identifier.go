package crud

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/iliyamo/resource-router/internal/validation"
)

// Identifier lists the primary key types a resource can be addressed by.
type Identifier interface {
	int64 | string | uuid.UUID
}

// IdentifierKind names the identifier type in descriptors and documents.
type IdentifierKind string

const (
	KindInteger IdentifierKind = "integer"
	KindString  IdentifierKind = "string"
	KindUUID    IdentifierKind = "uuid"
)

// KindOf reports the kind of ID.
func KindOf[ID Identifier]() IdentifierKind {
	var zero ID
	switch any(zero).(type) {
	case int64:
		return KindInteger
	case uuid.UUID:
		return KindUUID
	default:
		return KindString
	}
}

// ParseID converts a raw path segment into an ID. A segment that does not
// parse yields a *ValidationError naming the "id" field.
func ParseID[ID Identifier](raw string) (ID, error) {
	var id ID
	switch p := any(&id).(type) {
	case *int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return id, badID(raw, KindInteger)
		}
		*p = n
	case *uuid.UUID:
		u, err := uuid.Parse(raw)
		if err != nil {
			return id, badID(raw, KindUUID)
		}
		*p = u
	case *string:
		if raw == "" {
			return id, badID(raw, KindString)
		}
		*p = raw
	}
	return id, nil
}

func badID(raw string, kind IdentifierKind) *ValidationError {
	msg := fmt.Sprintf("id must be a valid %s", kind)
	return invalid(msg, validation.FieldError{
		Field:   "id",
		Tag:     string(kind),
		Value:   raw,
		Message: msg,
	})
}

func formatID[ID Identifier](id ID) string {
	return fmt.Sprint(id)
}
