package repository

import (
	"time"

	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

type NotificationStore interface {
	WithTx(tx *gorm.DB) NotificationStore
	FindByID(id uint) (*model.Notification, error)
	CreateAll(notifications []model.Notification) error
	Save(notification *model.Notification) error
	CountUnread(toID uint) (int64, error)
	MarkAllRead(toID uint, at time.Time) error
	List(opts ListOptions) ([]model.Notification, int64, error)
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationStore {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) WithTx(tx *gorm.DB) NotificationStore {
	return &NotificationRepository{db: tx}
}

func (r *NotificationRepository) FindByID(id uint) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) CreateAll(notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

func (r *NotificationRepository) Save(notification *model.Notification) error {
	return r.db.Save(notification).Error
}

func (r *NotificationRepository) CountUnread(toID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("to_id = ? AND read_at IS NULL", toID).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkAllRead(toID uint, at time.Time) error {
	return r.db.Model(&model.Notification{}).
		Where("to_id = ? AND read_at IS NULL", toID).
		Update("read_at", at).Error
}

func (r *NotificationRepository) List(opts ListOptions) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	total, err := runList(r.db.Model(&model.Notification{}), opts, &notifications)
	return notifications, total, err
}
