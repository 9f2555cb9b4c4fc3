package repository

import (
	"context"

	"ecofinds/internal/domain/model"
)

type CartRepository interface {
	//無ければ作る（user_idのunique制約で同時作成にも耐える）
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//無ければErrNotFound
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//行ロック付き取得。チェックアウトの直列化に使う（Tx内限定）
	FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error)
	//明細を全削除
	Clear(ctx context.Context, cartID int64) error
}
