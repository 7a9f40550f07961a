package model

// Supported user interface languages.
const (
	LanguageRussian = "ru"
	LanguageEnglish = "en"
)

// User represents a Telegram user as stored in the `user` table.
// The primary key is the Telegram user id supplied by the client,
// so it is not auto-incremented.
//
// Fields:
//  ID       – Telegram user id.
//  Username – Telegram username (nullable).
//  FullName – display name.
//  Language – interface language, one of LanguageRussian or LanguageEnglish.
type User struct {
	ID       int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`     // user.id
	Username *string `json:"username" gorm:"size:255;index"`               // user.username (nullable)
	FullName string  `json:"full_name" gorm:"size:255;not null"`           // user.full_name
	Language string  `json:"language" gorm:"size:2;not null;default:'ru'"` // user.language
}

// TableName keeps the singular table name.
func (User) TableName() string { return "user" }
