package models

import "time"

type Answer struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Content    string `gorm:"not null" json:"content"`
	AuthorID   int    `gorm:"index" json:"author_id"`
	QuestionID int    `gorm:"index" json:"question_id"`

	User User `gorm:"foreignKey:AuthorID" json:"user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	Content string `json:"content" binding:"required"`
}
