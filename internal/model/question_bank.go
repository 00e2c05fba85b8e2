package model

import "time"

// BankStatus is the publication state of a question bank.
type BankStatus string

// Question bank publication states. A bank starts in draft, moves to
// pending_approval when the creator submits it, and becomes published
// only through admin approval.
const (
	BankStatusDraft     BankStatus = "draft"
	BankStatusPending   BankStatus = "pending_approval"
	BankStatusPublished BankStatus = "published"
)

// QuestionBank is a named collection of questions owned by one creator.
type QuestionBank struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	CreatorID    uint       `json:"creator_id" gorm:"not null;index"`
	Organization string     `json:"organization" gorm:"size:255;not null"`
	Introduction string     `json:"introduction,omitempty" gorm:"type:text"`
	Status       BankStatus `json:"status" gorm:"size:32;not null;default:'draft';index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Creator   *User      `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuestionBankID"`
}

// Visible reports whether the bank may be read by the given viewer.
// Drafts and pending banks are visible only to their creator and admins.
func (b *QuestionBank) Visible(viewerID uint, viewerIsAdmin bool) bool {
	if b.Status == BankStatusPublished {
		return true
	}
	return viewerIsAdmin || viewerID == b.CreatorID
}
