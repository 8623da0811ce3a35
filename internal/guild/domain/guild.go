package domain

import "time"

// Guild is a named group of adventurers
type Guild struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	OwnerID     string    `json:"owner_id" gorm:"index;not null;size:36"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:80"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
