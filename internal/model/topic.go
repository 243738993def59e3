package model

import "time"

type Topic struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:255" validate:"required,min=1,max=255"`
	Slug        string     `json:"slug" gorm:"not null"`
	AuthorID    uint       `json:"author_id" gorm:"not null;index"`
	Author      *User      `json:"-" gorm:"foreignKey:AuthorID;references:ID"`
	Categories  []Category `json:"categories" gorm:"many2many:topic_categories"`
	PostIndex   int        `json:"post_index" gorm:"not null;default:0"` // 当前楼层号，下一楼为 +1
	LastReplyAt time.Time  `json:"last_reply_at" gorm:"not null"`       // postIndex 为 0 时等于 createAt
	LastReplyID *uint      `json:"last_reply_by" gorm:"column:last_reply_by_id"`
	LastReplyBy *User      `json:"-" gorm:"foreignKey:LastReplyID;references:ID"`
	Locked      bool       `json:"locked" gorm:"not null;default:false"`
	Delete      bool       `json:"delete" gorm:"column:deleted;not null;default:false"`
	Pinned      bool       `json:"pinned" gorm:"not null;default:false"`
	Feature     bool       `json:"feature" gorm:"not null;default:false"`
	LockedByID  *uint      `json:"locked_by"` // 最后一次 锁定/解锁 操作者
	LockedBy    *User      `json:"-" gorm:"foreignKey:LockedByID;references:ID"`
	DeleteByID  *uint      `json:"delete_by"` // 最后一次 删除/恢复 操作者
	DeleteBy    *User      `json:"-" gorm:"foreignKey:DeleteByID;references:ID"`
	CreateAt    time.Time  `json:"create_at" gorm:"not null"`

	// Body 仅在创建时由调用方提供，作为首帖原文，不落库。
	Body string `json:"body,omitempty" gorm:"-" validate:"-"`
}
