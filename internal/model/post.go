package model

import "time"

type Post struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Raw        string     `json:"raw" gorm:"type:text;not null" validate:"required,min=1"`
	Cooked     string     `json:"cooked" gorm:"type:text;not null"`
	TopicID    uint       `json:"topic_id" gorm:"not null;uniqueIndex:idx_posts_topic_index"`
	Topic      *Topic     `json:"-" gorm:"foreignKey:TopicID;references:ID"`
	AuthorID   uint       `json:"author_id" gorm:"not null;index"`
	Author     *User      `json:"-" gorm:"foreignKey:AuthorID;references:ID"`
	Index      int        `json:"index" gorm:"column:idx;not null;uniqueIndex:idx_posts_topic_index"` // 楼层号，topic 内唯一，0 为楼主帖
	LastEditAt *time.Time `json:"last_edit_at"`
	Delete     bool       `json:"delete" gorm:"column:deleted;not null;default:false"`
	DeleteByID *uint      `json:"delete_by"`
	DeleteBy   *User      `json:"-" gorm:"foreignKey:DeleteByID;references:ID"`
	IP         string     `json:"ip,omitempty" gorm:"size:45"`
	CreateAt   time.Time  `json:"create_at" gorm:"not null"`
}
