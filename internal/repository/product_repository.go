package repository

import (
	"context"
	"errors"

	"ecofinds/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	//カテゴリは完全一致
	Category string
	//qはtitle/descriptionへの部分一致（大文字小文字を区別しない）
	Q string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//公開中（is_active=true）の商品のみ。新着順
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//出品者の商品一覧（非公開も含む）。新着順
	ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	SoftDelete(ctx context.Context, id int64) error
}
