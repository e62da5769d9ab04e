package model

import "time"

// Employee 员工账号：注册时创建，登录成功刷新 LastLogin，系统内不删除。
type Employee struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`

	Username     string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"size:256;not null" json:"-"`
	Fullname     string `gorm:"size:120;not null" json:"fullname"`
	Position     string `gorm:"size:50;not null" json:"position"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Phone        string `gorm:"size:10;not null" json:"phone"`
}

func (Employee) TableName() string { return "employees" }
