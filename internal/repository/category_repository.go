package repository

import (
	"errors"

	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

type CategoryStore interface {
	WithTx(tx *gorm.DB) CategoryStore
	FindByID(id uint) (*model.Category, error)
	FindAll() ([]model.Category, error)
	// MaxPosition 同一父节点下的最大 position；该父节点尚无子节点时 ok 为 false。
	MaxPosition(parentID *uint) (max int, ok bool, err error)
	// FindByParentOrderByPositionDesc 指定父节点的直接子节点，position 降序。
	FindByParentOrderByPositionDesc(parentID *uint) ([]model.Category, error)
	ExistsBySlug(slug string) (bool, error)
	Create(category *model.Category) error
	Save(category *model.Category) error
	Delete(category *model.Category) error
	// AddTopicRelations 为「目前归档在 categoryID 下的全部 topic」添加与 addID 的关联。
	AddTopicRelations(categoryID, addID uint) error
	// RemoveTopicRelations 删除这些 topic 与 removeID 的关联。
	RemoveTopicRelations(categoryID, removeID uint) error
	// RemoveAllRelations 删除 categoryID 自身的全部 topic 关联。
	RemoveAllRelations(categoryID uint) error
	CountTopicRelations(categoryID uint) (int64, error)
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryStore {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) WithTx(tx *gorm.DB) CategoryStore {
	return &CategoryRepository{db: tx}
}

func (r *CategoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("position").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) MaxPosition(parentID *uint) (int, bool, error) {
	tx := r.db.Model(&model.Category{}).Select("position")
	if parentID == nil {
		tx = tx.Where("parent_id IS NULL")
	} else {
		tx = tx.Where("parent_id = ?", *parentID)
	}
	var position int
	err := tx.Order("position DESC").Limit(1).Take(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return position, true, nil
}

func (r *CategoryRepository) FindByParentOrderByPositionDesc(parentID *uint) ([]model.Category, error) {
	tx := r.db
	if parentID == nil {
		tx = tx.Where("parent_id IS NULL")
	} else {
		tx = tx.Where("parent_id = ?", *parentID)
	}
	var categories []model.Category
	if err := tx.Order("position DESC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) ExistsBySlug(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Category{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) Save(category *model.Category) error {
	return r.db.Save(category).Error
}

func (r *CategoryRepository) Delete(category *model.Category) error {
	return r.db.Delete(category).Error
}

func (r *CategoryRepository) AddTopicRelations(categoryID, addID uint) error {
	return r.db.Exec(`INSERT INTO topic_categories (topic_id, category_id)
		SELECT topic_id, ? FROM topic_categories WHERE category_id = ?`,
		addID, categoryID).Error
}

func (r *CategoryRepository) RemoveTopicRelations(categoryID, removeID uint) error {
	return r.db.Exec(`DELETE FROM topic_categories WHERE category_id = ?
		AND topic_id IN (SELECT topic_id FROM topic_categories WHERE category_id = ?)`,
		removeID, categoryID).Error
}

func (r *CategoryRepository) RemoveAllRelations(categoryID uint) error {
	return r.db.Exec(`DELETE FROM topic_categories WHERE category_id = ?`, categoryID).Error
}

func (r *CategoryRepository) CountTopicRelations(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Table("topic_categories").Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
