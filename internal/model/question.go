package model

import "time"

// Question is a single multiple-choice item within a question bank.
// SerialNumber defines display order inside the bank and is assigned
// at creation; deleting a question never renumbers the rest.
type Question struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	QuestionBankID uint      `json:"question_bank_id" gorm:"not null;index"`
	ExamID         uint      `json:"exam_id" gorm:"not null;index"`
	SubjectID      uint      `json:"subject_id" gorm:"not null;index"`
	QuestionText   string    `json:"question_text" gorm:"type:text;not null"`
	HasOptions     bool      `json:"has_options" gorm:"default:true"`
	Options        []string  `json:"options,omitempty" gorm:"serializer:json"`
	CorrectAnswer  string    `json:"correct_answer" gorm:"type:text;not null"`
	Description    string    `json:"description,omitempty" gorm:"type:text"`
	SerialNumber   int       `json:"serial_number" gorm:"not null;index:idx_bank_serial"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	Bank    *QuestionBank `json:"bank,omitempty" gorm:"foreignKey:QuestionBankID"`
	Exam    *Exam         `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	Subject *Subject      `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}
