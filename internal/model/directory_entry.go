package model

import "time"

// DirectoryEntry is one row of the user directory consulted by directory-lookup login.
type DirectoryEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"size:128;not null;uniqueIndex" json:"user_id"`
	Name         string    `gorm:"size:128" json:"name"`
	Organization string    `gorm:"size:128;not null" json:"organization"`
	Role         string    `gorm:"size:32;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
