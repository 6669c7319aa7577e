package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docintake/internal/identity"
	"docintake/internal/model"
)

type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// Lookup matches user ids case-insensitively and returns (nil, nil) on a miss.
func (r *DirectoryRepository) Lookup(ctx context.Context, userID string) (*identity.DirectoryEntry, error) {
	var entry model.DirectoryEntry
	err := r.db.WithContext(ctx).
		Where("LOWER(user_id) = ?", strings.ToLower(strings.TrimSpace(userID))).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query directory entry failed: %w", err)
	}
	return &identity.DirectoryEntry{
		UserID:       entry.UserID,
		Name:         entry.Name,
		Organization: entry.Organization,
		Role:         entry.Role,
	}, nil
}

// Upsert inserts the entry or replaces name, organization and role of an existing user id.
func (r *DirectoryRepository) Upsert(ctx context.Context, entry *model.DirectoryEntry) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "organization", "role", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("upsert directory entry failed: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) List(ctx context.Context) ([]model.DirectoryEntry, error) {
	var entries []model.DirectoryEntry
	if err := r.db.WithContext(ctx).Order("user_id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list directory entries failed: %w", err)
	}
	return entries, nil
}
