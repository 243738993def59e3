package repository

import (
	"bicarb-server/internal/perm"

	"gorm.io/gorm"
)

// ListOptions 集合读取的过滤/排序/分页参数；WithTotal 请求精确总数。
type ListOptions struct {
	Scope     perm.Scope // 权限谓词，与调用方过滤条件一同下推
	Filter    perm.Scope // 调用方自己的过滤条件，可为 nil
	Sort      string
	Offset    int
	Limit     int
	WithTotal bool
}

// applyScopes 把权限谓词和调用方过滤一起压进查询（谓词下推，不做逐行判定）。
func applyScopes(tx *gorm.DB, opts ListOptions) *gorm.DB {
	if opts.Scope != nil {
		tx = opts.Scope(tx)
	}
	if opts.Filter != nil {
		tx = opts.Filter(tx)
	}
	return tx
}

// runList 通用列表查询：先在同一谓词下取总数（可选），再取分页页。
func runList(tx *gorm.DB, opts ListOptions, dest any) (int64, error) {
	tx = applyScopes(tx, opts)

	var total int64 = -1
	if opts.WithTotal {
		if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return 0, err
		}
	}
	if opts.Sort != "" {
		tx = tx.Order(opts.Sort)
	}
	if opts.Offset > 0 {
		tx = tx.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	if err := tx.Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
