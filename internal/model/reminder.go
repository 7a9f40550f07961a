package model

import "time"

// Repeat intervals of a reminder.
const (
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
	RepeatYearly  = "yearly"
)

// Reminder is a scheduled notification stored in the `reminder` table.
//
// Fields:
//  ID       – auto-incremented primary key.
//  RemindAt – when the reminder fires.
//  Repeat   – repeat interval (daily, weekly, monthly or yearly).
type Reminder struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"` // reminder.id
	RemindAt time.Time `json:"remind_at" gorm:"not null"`          // reminder.remind_at
	Repeat   string    `json:"repeat" gorm:"size:7"`               // reminder.repeat
}

func (Reminder) TableName() string { return "reminder" }
