package repository

import (
	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

type GroupStore interface {
	WithTx(tx *gorm.DB) GroupStore
	FindByID(id uint) (*model.Group, error)
	FindAll() ([]model.Group, error)
	Create(group *model.Group) error
	Save(group *model.Group) error
	Delete(group *model.Group) error
}

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupStore {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) WithTx(tx *gorm.DB) GroupStore {
	return &GroupRepository{db: tx}
}

func (r *GroupRepository) FindByID(id uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindAll() ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) Create(group *model.Group) error {
	return r.db.Create(group).Error
}

func (r *GroupRepository) Save(group *model.Group) error {
	return r.db.Save(group).Error
}

func (r *GroupRepository) Delete(group *model.Group) error {
	return r.db.Delete(group).Error
}
