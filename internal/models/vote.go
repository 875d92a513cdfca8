package models

import "time"

// Vote - one row per user per content item, vote_type is 1 or -1.
// A user's membership in an item's upvoter/downvoter set is the projection
// of this row; counts are always derived by counting rows, never stored.
type Vote struct {
	ID         int  `gorm:"primaryKey" json:"id"`
	UserID     int  `gorm:"not null;index;uniqueIndex:idx_votes_user_question;uniqueIndex:idx_votes_user_answer" json:"user_id"`
	QuestionID *int `gorm:"index;uniqueIndex:idx_votes_user_question" json:"question_id,omitempty"` // set for question votes
	AnswerID   *int `gorm:"index;uniqueIndex:idx_votes_user_answer" json:"answer_id,omitempty"`     // set for answer votes
	VoteType   int  `gorm:"not null" json:"vote_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
