package repository

import (
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"

	"gorm.io/gorm"
)

type TopicStore interface {
	WithTx(tx *gorm.DB) TopicStore
	FindByID(id uint) (*model.Topic, error)
	FindVisibleByID(id uint, scope perm.Scope) (*model.Topic, error)
	Create(topic *model.Topic) error
	Save(topic *model.Topic) error
	ReplaceCategories(topicID uint, categories []model.Category) error
	List(opts ListOptions) ([]model.Topic, int64, error)
}

type TopicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicStore {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) WithTx(tx *gorm.DB) TopicStore {
	return &TopicRepository{db: tx}
}

func (r *TopicRepository) FindByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	if err := r.db.Preload("Categories").Preload("Author").First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// FindVisibleByID 读权限谓词下的单条查询，谓词挡掉时与不存在同样返回 ErrRecordNotFound。
func (r *TopicRepository) FindVisibleByID(id uint, scope perm.Scope) (*model.Topic, error) {
	tx := r.db.Model(&model.Topic{})
	if scope != nil {
		tx = scope(tx)
	}
	var topic model.Topic
	if err := tx.Preload("Categories").Preload("Author").Where("topics.id = ?", id).First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) Create(topic *model.Topic) error {
	return r.db.Create(topic).Error
}

// ReplaceCategories 用给定集合整体替换主题的分类冗余关系。
func (r *TopicRepository) ReplaceCategories(topicID uint, categories []model.Category) error {
	if err := r.db.Exec(`DELETE FROM topic_categories WHERE topic_id = ?`, topicID).Error; err != nil {
		return err
	}
	for _, c := range categories {
		if err := r.db.Exec(`INSERT INTO topic_categories (topic_id, category_id) VALUES (?, ?)`,
			topicID, c.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *TopicRepository) Save(topic *model.Topic) error {
	return r.db.Save(topic).Error
}

func (r *TopicRepository) List(opts ListOptions) ([]model.Topic, int64, error) {
	var topics []model.Topic
	total, err := runList(r.db.Model(&model.Topic{}), opts, &topics)
	return topics, total, err
}
