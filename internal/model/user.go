package model

import "time"

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"unique;not null;size:30" validate:"required,min=1,max=30,alphanum"`
	Nickname     string     `json:"nickname" gorm:"unique;not null;size:30" validate:"required,min=1,max=30"`
	Password     string     `json:"-" gorm:"not null" validate:"required,min=6"`
	Email        string     `json:"email" gorm:"unique;index;size:255" validate:"required,email"`
	EmailPublic  bool       `json:"email_public" gorm:"not null;default:false"`
	Avatar       string     `json:"avatar"`
	Bio          string     `json:"bio" validate:"max=255"`
	Website      string     `json:"website" validate:"omitempty,url"`
	Github       string     `json:"github"`
	TopicCount   int        `json:"topic_count" gorm:"not null;default:0"`
	PostCount    int        `json:"post_count" gorm:"not null;default:0"` // 不包含楼主帖（index 0）
	Active       bool       `json:"active" gorm:"not null;default:false"`
	LockedAt     *time.Time `json:"locked_at"`
	LockedUntil  *time.Time `json:"locked_until"`
	LastSignInAt *time.Time `json:"last_sign_in_at"`
	LastSignIP   string     `json:"last_sign_ip,omitempty" gorm:"size:45"`
	CreateAt     time.Time  `json:"create_at" gorm:"not null"`
	GroupID      uint       `json:"group_id" gorm:"not null;index"`
	Group        Group      `json:"-" gorm:"foreignKey:GroupID;references:ID" validate:"-"`
}

// Valid 账号可用：已激活且未处于锁定期。
func (u *User) Valid(now time.Time) bool {
	return u.Active && (u.LockedUntil == nil || u.LockedUntil.Before(now))
}
