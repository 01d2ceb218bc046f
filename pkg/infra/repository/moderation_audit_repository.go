package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"gorm.io/gorm"
)

type ModerationAuditRepository struct {
	db *gorm.DB
}

func NewModerationAuditRepository(db *gorm.DB) moderation.AuditRepository {
	return &ModerationAuditRepository{db: db}
}

func (r *ModerationAuditRepository) Save(ctx context.Context, record *moderation.AuditRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("audit record: %w", err)
	}
	return nil
}

func (r *ModerationAuditRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]moderation.AuditRecord, error) {
	var records []moderation.AuditRecord
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("audit records: %w", err)
	}
	return records, nil
}
