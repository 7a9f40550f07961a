package handler

import (
	"github.com/iliyamo/resource-router/internal/crud"
	"github.com/iliyamo/resource-router/internal/model"
	"github.com/iliyamo/resource-router/internal/schema"
)

// UserResponse is what clients get back for a user.
type UserResponse struct {
	ID       int64   `json:"id"`
	Username *string `json:"username"`
	FullName string  `json:"full_name"`
	Language string  `json:"language"`
}

// UserRequest is the body of PUT and PATCH /user/:id. The id comes from the
// path and cannot be changed.
type UserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=255"`
	FullName string  `json:"full_name" validate:"required,max=255"`
	Language string  `json:"language" validate:"required,oneof=ru en"`
}

// UserCreateRequest is the body of POST /user. Users are keyed by their
// Telegram id, which the client supplies.
type UserCreateRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	UserRequest
}

// NewUserRouter builds the /user resource.
func NewUserRouter(res Resources) (*crud.Router[model.User, int64], error) {
	return crud.New[model.User, int64](res.config("user", schema.Overrides{
		Request:       schema.Of[UserRequest](),
		CreateRequest: schema.Of[UserCreateRequest](),
		Response:      schema.Of[UserResponse](),
	}))
}
