package models

import "time"

// SavedQuestion - a user's bookmark on a question, toggled on and off.
type SavedQuestion struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	UserID     int       `gorm:"not null;uniqueIndex:idx_saved_user_question" json:"user_id"`
	QuestionID int       `gorm:"not null;uniqueIndex:idx_saved_user_question" json:"question_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	Question   Question  `gorm:"foreignKey:QuestionID" json:"question"`
	CreatedAt  time.Time `json:"created_at"`
}
