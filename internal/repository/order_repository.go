package repository

import (
	"context"
	"errors"

	"ecofinds/internal/domain/model"
)

// idempotency keyが既に使われていた（同時に同じキーで作成しようとした側が受け取る）
var ErrDuplicateKey = errors.New("duplicate key")

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//新着順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	//キー重複はErrDuplicateKey（Txをabortさせない）
	Create(ctx context.Context, order model.Order) (int64, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
