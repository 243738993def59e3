package model

import "time"

type NotificationType string

const (
	NotificationReply   NotificationType = "REPLY"
	NotificationMention NotificationType = "MENTION"
)

// Notification 只能由变更管线创建；除 readAt（仅收件人可改）外不可修改。
type Notification struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	Type     NotificationType `json:"type" gorm:"not null;size:16"`
	SendID   uint             `json:"send_id" gorm:"not null"`
	Send     *User            `json:"-" gorm:"foreignKey:SendID;references:ID"`
	ToID     uint             `json:"to_id" gorm:"not null;index"`
	To       *User            `json:"-" gorm:"foreignKey:ToID;references:ID"`
	PostID   uint             `json:"post_id" gorm:"not null"`
	Post     *Post            `json:"-" gorm:"foreignKey:PostID;references:ID"`
	TopicID  uint             `json:"topic_id" gorm:"not null"`
	Topic    *Topic           `json:"-" gorm:"foreignKey:TopicID;references:ID"`
	ReadAt   *time.Time       `json:"read_at"`
	CreateAt time.Time        `json:"create_at" gorm:"not null"`
}
