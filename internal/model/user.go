// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 用户角色常量。
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
	RoleGuest = "GUEST"
)

// 会话来源常量，记录在 JWT 的 sessionType 字段中。
const (
	SessionPassword = "password"
	SessionOTP      = "otp"
	SessionGuest    = "guest"
)

// User 定义了 users 表的 ORM 模型。
// 手机号是唯一的登录标识；访客账号的手机号为内部生成的占位值。
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone        string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	FullName     string    `gorm:"type:varchar(100);not null" json:"fullName"`
	PasswordHash string    `gorm:"type:varchar(100)" json:"-"`
	Role         string    `gorm:"type:varchar(10);not null;default:'USER'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
