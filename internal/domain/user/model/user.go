package model

import "gorm.io/gorm"

// 用户角色
const (
	RoleCustomer   = 1
	RoleStoreOwner = 2
	RoleAdmin      = 9
)

// 用户状态
const (
	StatusNormal  = 1
	StatusBanned  = 2
	StatusDeleted = 3
)

// User 用户模型
type User struct {
	gorm.Model
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password string `json:"-"` // 密码不返回给前端
	Role     int    `gorm:"default:1" json:"role"`
	Status   int    `gorm:"default:1" json:"status"`
}
