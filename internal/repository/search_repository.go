package repository

import (
	"strings"

	"bicarb-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SearchStore interface {
	WithTx(tx *gorm.DB) SearchStore
	Upsert(doc *model.SearchDocument) error
	UpsertAll(docs []model.SearchDocument) error
	DeleteByPost(postID uint) error
	DeleteByTopic(topicID uint) error
	UpdateTitleByTopic(topicID uint, title string) error
	Purge() error
	FindByPost(postID uint) (*model.SearchDocument, error)
	Search(keyword string, offset, limit int) ([]model.SearchDocument, int64, error)
	SearchSimilar(doc *model.SearchDocument, offset, limit int) ([]model.SearchDocument, int64, error)
}

type SearchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchStore {
	return &SearchRepository{db: db}
}

func (r *SearchRepository) WithTx(tx *gorm.DB) SearchStore {
	return &SearchRepository{db: tx}
}

func (r *SearchRepository) Upsert(doc *model.SearchDocument) error {
	return r.db.Save(doc).Error
}

func (r *SearchRepository) UpsertAll(docs []model.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.Save(&docs).Error
}

func (r *SearchRepository) DeleteByPost(postID uint) error {
	return r.db.Delete(&model.SearchDocument{}, "post_id = ?", postID).Error
}

func (r *SearchRepository) DeleteByTopic(topicID uint) error {
	return r.db.Delete(&model.SearchDocument{}, "topic_id = ?", topicID).Error
}

func (r *SearchRepository) UpdateTitleByTopic(topicID uint, title string) error {
	return r.db.Model(&model.SearchDocument{}).
		Where("topic_id = ?", topicID).
		Update("title", title).Error
}

// Purge 清空整个索引表，重建前调用
func (r *SearchRepository) Purge() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.SearchDocument{}).Error
}

func (r *SearchRepository) FindByPost(postID uint) (*model.SearchDocument, error) {
	var doc model.SearchDocument
	if err := r.db.Where("post_id = ?", postID).Take(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// SearchSimilar 按标题词条找相近文档，标题命中的排在前面，排除文档自身。
func (r *SearchRepository) SearchSimilar(doc *model.SearchDocument, offset, limit int) ([]model.SearchDocument, int64, error) {
	words := strings.Fields(doc.Title)
	if len(words) == 0 {
		return nil, 0, nil
	}

	conds := make([]string, 0, len(words))
	args := make([]any, 0, 2*len(words))
	for _, w := range words {
		pattern := "%" + w + "%"
		conds = append(conds, "title LIKE ? OR content LIKE ?")
		args = append(args, pattern, pattern)
	}

	query := r.db.Model(&model.SearchDocument{}).
		Where("post_id <> ?", doc.PostID).
		Where("("+strings.Join(conds, " OR ")+")", args...)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []model.SearchDocument
	err := query.
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN title LIKE ? THEN 0 ELSE 1 END, post_id DESC",
			Vars: []any{"%" + doc.Title + "%"},
		}}).
		Offset(offset).Limit(limit).Find(&docs).Error
	return docs, total, err
}

func (r *SearchRepository) Search(keyword string, offset, limit int) ([]model.SearchDocument, int64, error) {
	pattern := "%" + keyword + "%"
	query := r.db.Model(&model.SearchDocument{}).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []model.SearchDocument
	err := query.Order("post_id DESC").Offset(offset).Limit(limit).Find(&docs).Error
	return docs, total, err
}
