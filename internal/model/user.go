package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name          string     `gorm:"size:100;not null" json:"name"`
	Email         string     `gorm:"size:100;unique;not null" json:"email"`
	Password      string     `gorm:"size:100;not null" json:"-"`
	Role          UserRole   `gorm:"size:20;default:'student'" json:"role"`
	EmailVerified *time.Time `json:"emailVerified"` // nil 表示邮箱未验证
	LastLogin     time.Time  `gorm:"autoCreateTime" json:"lastLogin"`
	LastSeen      time.Time  `gorm:"autoCreateTime" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// VerificationToken 注册后发放的邮箱验证令牌
type VerificationToken struct {
	BaseModel
	Identifier string    `gorm:"size:100;index;not null" json:"identifier"` // 用户邮箱
	Token      string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time `gorm:"not null" json:"expiresAt"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}
