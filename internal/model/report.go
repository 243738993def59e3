package model

import "time"

type Report struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	ByID     uint       `json:"by_id" gorm:"not null;index"`
	By       *User      `json:"-" gorm:"foreignKey:ByID;references:ID"`
	PostID   uint       `json:"post_id" gorm:"not null;index"`
	Post     *Post      `json:"-" gorm:"foreignKey:PostID;references:ID"`
	Reason   string     `json:"reason" gorm:"not null;size:255" validate:"required,min=1,max=255"`
	CreateAt time.Time  `json:"create_at" gorm:"not null"`
	HandleAt *time.Time `json:"handle_at"` // 由版主批量处理时统一写入
}
