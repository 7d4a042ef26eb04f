package model

import "gorm.io/gorm"

// 店铺审核状态
const (
	StoreStatusPending  = "pending"
	StoreStatusApproved = "approved"
	StoreStatusRejected = "rejected"
)

// Store 店铺模型，一个店主对应一个店铺
type Store struct {
	gorm.Model
	OwnerID     uint   `gorm:"uniqueIndex;not null" json:"ownerId"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ReviewNote  string `gorm:"type:text" json:"reviewNote,omitempty"`
	ReviewedBy  *uint  `json:"reviewedBy,omitempty"`
}

// Product 商品模型
type Product struct {
	gorm.Model
	StoreID     uint    `gorm:"index;not null" json:"storeId"`
	Name        string  `gorm:"type:varchar(200);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int     `gorm:"not null" json:"stock"`
	ImageURL    string  `gorm:"type:varchar(500)" json:"imageUrl"`
}
