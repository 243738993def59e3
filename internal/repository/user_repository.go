package repository

import (
	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

type UserStore interface {
	WithTx(tx *gorm.DB) UserStore
	FindByID(id uint) (*model.User, error)
	FindByUsernameIgnoreCase(username string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByNickname(nickname string) (*model.User, error)
	Create(user *model.User) error
	Save(user *model.User) error
	Count() (int64, error)
	// ReassignGroup 把 from 组的全部成员改到 to 组。
	ReassignGroup(fromGroupID, toGroupID uint) error
	List(opts ListOptions) ([]model.User, int64, error)
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserStore {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) UserStore {
	return &UserRepository{db: tx}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Group").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsernameIgnoreCase(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Group").Where("LOWER(username) = LOWER(?)", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByNickname(nickname string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) Save(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) ReassignGroup(fromGroupID, toGroupID uint) error {
	return r.db.Model(&model.User{}).
		Where("group_id = ?", fromGroupID).
		Update("group_id", toGroupID).Error
}

func (r *UserRepository) List(opts ListOptions) ([]model.User, int64, error) {
	var users []model.User
	total, err := runList(r.db.Model(&model.User{}), opts, &users)
	return users, total, err
}
