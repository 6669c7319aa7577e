package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docintake/internal/model"
)

type UploadRecordRepository struct {
	db *gorm.DB
}

func NewUploadRecordRepository(db *gorm.DB) *UploadRecordRepository {
	return &UploadRecordRepository{db: db}
}

// Save inserts the record keyed by object key. A later event for the same key only
// moves the status forward; a complete record is never demoted to partial.
func (r *UploadRecordRepository) Save(ctx context.Context, record *model.UploadRecord) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "object_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status": gorm.Expr("CASE WHEN status = ? THEN status ELSE ? END", model.UploadStatusComplete, record.Status),
		}),
	}).Create(record)
	if tx.Error != nil {
		return fmt.Errorf("save upload record failed: %w", tx.Error)
	}
	return nil
}

func (r *UploadRecordRepository) ListByStatus(ctx context.Context, status string, limit int) ([]model.UploadRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var records []model.UploadRecord
	if err := q.Order("uploaded_at ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list upload records failed: %w", err)
	}
	return records, nil
}

func (r *UploadRecordRepository) GetByObjectKey(ctx context.Context, objectKey string) (*model.UploadRecord, error) {
	var record model.UploadRecord
	if err := r.db.WithContext(ctx).Where("object_key = ?", objectKey).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get upload record failed: %w", err)
	}
	return &record, nil
}

func (r *UploadRecordRepository) MarkComplete(ctx context.Context, objectKey string) error {
	err := r.db.WithContext(ctx).
		Model(&model.UploadRecord{}).
		Where("object_key = ?", objectKey).
		Update("status", model.UploadStatusComplete).Error
	if err != nil {
		return fmt.Errorf("mark upload record complete failed: %w", err)
	}
	return nil
}
