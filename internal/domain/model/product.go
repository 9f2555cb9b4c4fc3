package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Product struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//出品者
	SellerID int64 `gorm:"not null;index" json:"seller_id"`

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(100);not null;index" json:"category"`

	//最小通貨単位のままintで持つ（floatは使わない）
	Price int64 `gorm:"not null" json:"price"`

	//画像URLの配列
	Images pq.StringArray `gorm:"type:text[]" json:"images"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
