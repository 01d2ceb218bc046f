package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditRecord keeps one verdict per analyzed asset for admin review.
type AuditRecord struct {
	ID              uuid.UUID `gorm:"primaryKey" json:"id"`
	BatchID         uuid.UUID `gorm:"index" json:"batch_id"`
	FileName        string    `json:"file_name"`
	Engine          string    `json:"engine"`
	IsApproved      bool      `json:"is_approved"`
	RiskScore       float64   `json:"risk_score"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (AuditRecord) TableName() string {
	return "moderation_audit_logs"
}

func NewAuditRecord(batchID uuid.UUID, fileName, engine string, verdict Verdict) *AuditRecord {
	return &AuditRecord{
		ID:              uuid.New(),
		BatchID:         batchID,
		FileName:        fileName,
		Engine:          engine,
		IsApproved:      verdict.IsApproved,
		RiskScore:       verdict.RiskScore,
		RejectionReason: verdict.RejectionReason,
		CreatedAt:       time.Now(),
	}
}

type AuditRepository interface {
	Save(ctx context.Context, record *AuditRecord) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]AuditRecord, error)
}
