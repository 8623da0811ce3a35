package domain

import "time"

// Quest is a unit of work a user sets out to complete for experience points
type Quest struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	OwnerID     string    `json:"owner_id" gorm:"index;not null;size:36"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	XP          int       `json:"xp" gorm:"default:0"`
	Completed   bool      `json:"completed" gorm:"index;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QuestFilter narrows a quest listing. Nil fields match everything.
type QuestFilter struct {
	OwnerID   *string
	Completed *bool
	Limit     int
	Offset    int
}
