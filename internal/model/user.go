package model

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User 对应数据库中 users 表，物业管理后台的登录账号。
type User struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"type:varchar(150);not null;unique" json:"username"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"` // Hide password in json output
	Role       string    `gorm:"type:enum('USER', 'ADMIN');default:'USER'" json:"role"`
	Department string    `gorm:"type:varchar(100)" json:"department"`
	Position   string    `gorm:"type:varchar(100)" json:"position"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
