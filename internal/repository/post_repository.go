package repository

import (
	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

type PostStore interface {
	WithTx(tx *gorm.DB) PostStore
	FindByID(id uint) (*model.Post, error)
	FindByTopicOrderByIndex(topicID uint) ([]model.Post, error)
	MaxIndex(topicID uint) (int, bool, error)
	Create(post *model.Post) error
	Save(post *model.Post) error
	List(opts ListOptions) ([]model.Post, int64, error)
}

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostStore {
	return &PostRepository{db: db}
}

func (r *PostRepository) WithTx(tx *gorm.DB) PostStore {
	return &PostRepository{db: tx}
}

func (r *PostRepository) FindByID(id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) FindByTopicOrderByIndex(topicID uint) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.Where("topic_id = ?", topicID).Order("idx ASC").Find(&posts).Error
	return posts, err
}

// MaxIndex 返回主题内当前最大楼层号，主题尚无帖子时 ok 为 false
func (r *PostRepository) MaxIndex(topicID uint) (int, bool, error) {
	var post model.Post
	err := r.db.Where("topic_id = ?", topicID).Order("idx DESC").Limit(1).Take(&post).Error
	if err == gorm.ErrRecordNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return post.Index, true, nil
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.db.Create(post).Error
}

func (r *PostRepository) Save(post *model.Post) error {
	return r.db.Save(post).Error
}

func (r *PostRepository) List(opts ListOptions) ([]model.Post, int64, error) {
	var posts []model.Post
	total, err := runList(r.db.Model(&model.Post{}), opts, &posts)
	return posts, total, err
}
