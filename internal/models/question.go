package models

import "time"

type Question struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `json:"content"`
	AuthorID int    `gorm:"index" json:"author_id"`
	Views    int    `gorm:"default:0" json:"views"`

	User User  `gorm:"foreignKey:AuthorID" json:"user"`
	Tags []Tag `gorm:"many2many:question_tags" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateQuestionRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}
