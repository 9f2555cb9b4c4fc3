package repository

import (
	"context"

	"ecofinds/internal/domain/model"
)

// 監査ログの保存・一覧取得の約束。
type AuditLogRepository interface {
	//監査ログを1件保存
	Create(ctx context.Context, log model.AuditLog) error

	//操作ユーザーで絞って新着順に返す
	ListByActor(ctx context.Context, actorUserID int64, limit int) ([]model.AuditLog, error)
}
