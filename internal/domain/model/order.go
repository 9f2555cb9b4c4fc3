package model

import "time"

// チェックアウト済みの注文。作成後は不変
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//明細スナップショットの合計（price×qtyの総和と常に一致）
	TotalPrice int64 `gorm:"not null" json:"total_price"`

	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
