package model

import "time"

// Exam is a lookup entity naming the exam a question came from, e.g.
// name "GATE-AR" year "2023". Deduplicated case-insensitively on
// (name, year) at creation.
type Exam struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:idx_exam_name_year"`
	Year      string    `json:"year" gorm:"size:8;not null;uniqueIndex:idx_exam_name_year"`
	CreatedAt time.Time `json:"created_at"`
}
