package handler

import (
	"time"

	"github.com/iliyamo/resource-router/internal/crud"
	"github.com/iliyamo/resource-router/internal/model"
	"github.com/iliyamo/resource-router/internal/schema"
)

type ReminderResponse struct {
	ID       int64     `json:"id"`
	RemindAt time.Time `json:"remind_at"`
	Repeat   string    `json:"repeat"`
}

// ReminderRequest is shared by create, update and partial update; the id is
// assigned by the database.
type ReminderRequest struct {
	RemindAt time.Time `json:"remind_at" validate:"required"`
	Repeat   string    `json:"repeat" validate:"required,oneof=daily weekly monthly yearly"`
}

func NewReminderRouter(res Resources) (*crud.Router[model.Reminder, int64], error) {
	return crud.New[model.Reminder, int64](res.config("reminder", schema.Overrides{
		Request:  schema.Of[ReminderRequest](),
		Response: schema.Of[ReminderResponse](),
	}))
}
