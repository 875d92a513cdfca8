package models

import "time"

// Interaction - append-only log of user actions against content, consumed by
// the recommender. Rows are never mutated; view rows are deduplicated per
// (user, question) by a partial unique index created in database.Initialize.
type Interaction struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	UserID     int    `gorm:"not null;index" json:"user_id"`
	Action     string `gorm:"not null;index" json:"action"`
	QuestionID *int   `gorm:"index" json:"question_id,omitempty"`
	AnswerID   *int   `gorm:"index" json:"answer_id,omitempty"`

	Tags []InteractionTag `gorm:"foreignKey:InteractionID" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
}

// InteractionTag - snapshot of one of the target's tags at the time the
// action happened. Later edits to the content's tags do not touch these rows.
type InteractionTag struct {
	ID            int `gorm:"primaryKey" json:"id"`
	InteractionID int `gorm:"not null;index" json:"interaction_id"`
	TagID         int `gorm:"not null;index" json:"tag_id"`
}
