package repository

import (
	"context"

	"ecofinds/internal/domain/model"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

// 監査ログを1件保存
func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

// 操作ユーザーで絞って新着順
func (r *AuditLogGormRepository) ListByActor(ctx context.Context, actorUserID int64, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Where("actor_user_id = ?", actorUserID).
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return []model.AuditLog{}, err
	}
	return logs, nil
}
