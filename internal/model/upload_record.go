package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	UploadStatusComplete = "complete"
	UploadStatusPartial  = "partial"
)

// UploadRecord is the audit row written for every upload that reached the object store.
// Metadata holds the exact sidecar bytes so a partial upload can be finished later. It is
// text rather than a native JSON column, which MySQL would reformat.
type UploadRecord struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ObjectKey    string         `gorm:"size:512;not null;uniqueIndex" json:"object_key"`
	MetadataKey  string         `gorm:"size:600;not null" json:"metadata_key"`
	UserID       string         `gorm:"size:128;not null;index" json:"user_id"`
	SessionID    string         `gorm:"size:16" json:"session_id"`
	Organization string         `gorm:"size:128;not null" json:"organization"`
	Department   string         `gorm:"size:128;not null" json:"department"`
	Role         string         `gorm:"size:32;not null" json:"role"`
	OriginalName string         `gorm:"size:255;not null" json:"original_name"`
	SizeBytes    int64          `json:"size_bytes"`
	ContentType  string         `gorm:"size:128" json:"content_type"`
	Status       string         `gorm:"size:16;not null;index" json:"status"`
	Metadata     datatypes.JSON `gorm:"type:longtext" json:"metadata"`
	UploadedAt   time.Time      `gorm:"index" json:"uploaded_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
