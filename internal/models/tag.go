package models

import "time"

type Tag struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;not null" json:"name"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
}
