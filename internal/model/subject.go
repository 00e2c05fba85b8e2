package model

import "time"

// Subject is a lookup entity used to tag questions. Names are deduplicated
// case-insensitively at creation; subjects are never deleted.
type Subject struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
}
