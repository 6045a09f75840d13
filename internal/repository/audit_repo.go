package repository

import (
	"context"

	"sukiism/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListByEntity(ctx context.Context, code string, limit int) ([]model.AuditLog, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) ListByEntity(ctx context.Context, code string, limit int) ([]model.AuditLog, error) {
	var out []model.AuditLog
	q := r.db.WithContext(ctx).Where("entity_code = ?", code).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
