package repository

import (
	"time"

	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

type ReportStore interface {
	WithTx(tx *gorm.DB) ReportStore
	FindByID(id uint) (*model.Report, error)
	Create(report *model.Report) error
	Save(report *model.Report) error
	HandleByPost(postID uint, at time.Time) (int64, error)
	List(opts ListOptions) ([]model.Report, int64, error)
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportStore {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) WithTx(tx *gorm.DB) ReportStore {
	return &ReportRepository{db: tx}
}

func (r *ReportRepository) FindByID(id uint) (*model.Report, error) {
	var report model.Report
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) Create(report *model.Report) error {
	return r.db.Create(report).Error
}

func (r *ReportRepository) Save(report *model.Report) error {
	return r.db.Save(report).Error
}

// HandleByPost 批量处理同一帖子下所有未处理的举报
func (r *ReportRepository) HandleByPost(postID uint, at time.Time) (int64, error) {
	result := r.db.Model(&model.Report{}).
		Where("post_id = ? AND handle_at IS NULL", postID).
		Update("handle_at", at)
	return result.RowsAffected, result.Error
}

func (r *ReportRepository) List(opts ListOptions) ([]model.Report, int64, error) {
	var reports []model.Report
	total, err := runList(r.db.Model(&model.Report{}), opts, &reports)
	return reports, total, err
}
