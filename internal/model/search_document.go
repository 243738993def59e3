package model

// SearchDocument 帖子在全文索引中的文档，topic 标题内嵌在每条帖子文档里。
type SearchDocument struct {
	PostID  uint   `json:"post_id" gorm:"primaryKey"`
	TopicID uint   `json:"topic_id" gorm:"not null;index"`
	Title   string `json:"title" gorm:"not null"`
	Content string `json:"content" gorm:"type:text;not null"`
}
