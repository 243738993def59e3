package model

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"unique;not null;size:255" validate:"omitempty,max=255"`
	Name        string    `json:"name" gorm:"not null;size:50" validate:"required,min=1,max=50"`
	Description string    `json:"description" validate:"max=255"`
	TopicCount  int       `json:"topic_count" gorm:"not null;default:0"`
	Position    int       `json:"position" gorm:"not null;uniqueIndex:idx_categories_parent_position"`
	ParentID    *uint     `json:"parent_id" gorm:"uniqueIndex:idx_categories_parent_position"`
	Parent      *Category `json:"-" gorm:"foreignKey:ParentID;references:ID"`
}
