package perm

import (
	"time"

	"bicarb-server/internal/consts"
	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

// 具名检查 id。权限类检查直接复用权限名（consts.Perm*）。
const (
	CheckRoleAll  = "role.all"
	CheckRoleNone = "role.none"

	CheckUserOwner         = "user.owner"
	CheckTopicOwner        = "topic.owner"
	CheckPostOwner         = "post.owner"
	CheckNotificationOwner = "notification.owner"

	CheckEmailPublic           = "email.public"
	CheckTopicNonDeleteByOther = "topic.delete.by.other.false"
	CheckTopicNonLockedByOther = "topic.locked.by.other.false"
	CheckPostNonDelete         = "post.delete.false"
	CheckPostNonDeleteByOther  = "post.delete.by.other.false"
	CheckPostTopicNonDelete    = "post.topic.delete.false"
	CheckPostTopicNonLocked    = "post.topic.locked.false"

	CheckTopicNonDeleteFilter     = "topic.delete.false.filter"
	CheckTopicDeleteBySelfFilter  = "topic.delete.by.self.filter"
	CheckPostNonDeleteFilter      = "post.delete.false.filter"
	CheckPostTopicNonDeleteFilter = "post.topic.delete.false.filter"
	CheckPostDeleteBySelfFilter   = "post.delete.by.self.filter"
	CheckNotificationOwnerFilter  = "notification.owner.filter"
)

// NewForumRegistry 注册论坛全部检查。
func NewForumRegistry() *Registry {
	reg := NewRegistry()

	reg.RegisterIdentity(CheckRoleAll, func(r *Requester) bool { return true })
	reg.RegisterIdentity(CheckRoleNone, func(r *Requester) bool { return false })

	// admin / mod 权限：仅要求权限集命中
	for _, p := range []string{
		consts.PermGroupAll, consts.PermCategoryAll, consts.PermSettingAll,
		consts.PermUserLock, consts.PermIPRead, consts.PermReportManage,
		consts.PermTopicEditTitle, consts.PermTopicEditCategory, consts.PermTopicLocked,
		consts.PermTopicDelete, consts.PermTopicPinned, consts.PermTopicFeature,
		consts.PermPostEditContent, consts.PermPostDelete,
	} {
		p := p
		reg.RegisterIdentity(p, func(r *Requester) bool {
			return r.HasPermission(p)
		})
	}

	// user 权限：额外要求账号激活且未锁定
	for _, p := range []string{
		consts.PermTopicCreate, consts.PermTopicEditOwnTitle, consts.PermTopicEditOwnCategory,
		consts.PermTopicLockedOwn, consts.PermTopicDeleteOwn,
		consts.PermPostCreate, consts.PermPostEditOwnContent, consts.PermPostDeleteOwn,
	} {
		p := p
		reg.RegisterIdentity(p, func(r *Requester) bool {
			return r.HasPermission(p) && r.Valid(time.Now())
		})
	}

	registerOwnerChecks(reg)
	registerPropertyChecks(reg)
	registerFilterChecks(reg)
	return reg
}

func registerOwnerChecks(reg *Registry) {
	reg.RegisterInstance(CheckUserOwner, func(r *Requester, entity any, _ *Change) bool {
		u, ok := entity.(*model.User)
		return ok && r.Is(u.ID)
	})
	reg.RegisterInstance(CheckTopicOwner, func(r *Requester, entity any, _ *Change) bool {
		t, ok := entity.(*model.Topic)
		return ok && r.Is(t.AuthorID)
	})
	reg.RegisterInstance(CheckPostOwner, func(r *Requester, entity any, _ *Change) bool {
		p, ok := entity.(*model.Post)
		return ok && r.Is(p.AuthorID)
	})
	reg.RegisterInstance(CheckNotificationOwner, func(r *Requester, entity any, _ *Change) bool {
		n, ok := entity.(*model.Notification)
		return ok && r.Is(n.ToID)
	})
}

func registerPropertyChecks(reg *Registry) {
	reg.RegisterInstance(CheckEmailPublic, func(_ *Requester, entity any, _ *Change) bool {
		u, ok := entity.(*model.User)
		return ok && u.EmailPublic
	})
	reg.RegisterInstance(CheckTopicNonDeleteByOther, func(_ *Requester, entity any, _ *Change) bool {
		t, ok := entity.(*model.Topic)
		return ok && (t.DeleteByID == nil || *t.DeleteByID == t.AuthorID)
	})
	reg.RegisterInstance(CheckTopicNonLockedByOther, func(_ *Requester, entity any, _ *Change) bool {
		t, ok := entity.(*model.Topic)
		return ok && (t.LockedByID == nil || *t.LockedByID == t.AuthorID)
	})
	reg.RegisterInstance(CheckPostNonDelete, func(_ *Requester, entity any, _ *Change) bool {
		p, ok := entity.(*model.Post)
		return ok && !p.Delete
	})
	reg.RegisterInstance(CheckPostNonDeleteByOther, func(_ *Requester, entity any, _ *Change) bool {
		p, ok := entity.(*model.Post)
		return ok && (p.DeleteByID == nil || *p.DeleteByID == p.AuthorID)
	})
	reg.RegisterInstance(CheckPostTopicNonDelete, func(_ *Requester, entity any, _ *Change) bool {
		p, ok := entity.(*model.Post)
		return ok && p.Topic != nil && !p.Topic.Delete
	})
	reg.RegisterInstance(CheckPostTopicNonLocked, func(_ *Requester, entity any, _ *Change) bool {
		p, ok := entity.(*model.Post)
		return ok && p.Topic != nil && !p.Topic.Locked
	})
}

func registerFilterChecks(reg *Registry) {
	reg.RegisterFilter(CheckTopicNonDeleteFilter, func(_ *Requester) Scope {
		return func(tx *gorm.DB) *gorm.DB { return tx.Where("topics.deleted = ?", false) }
	})
	reg.RegisterFilter(CheckTopicDeleteBySelfFilter, func(r *Requester) Scope {
		if r == nil {
			return MatchNone()
		}
		uid := r.ID
		return func(tx *gorm.DB) *gorm.DB { return tx.Where("topics.delete_by_id = ?", uid) }
	})
	reg.RegisterFilter(CheckPostNonDeleteFilter, func(_ *Requester) Scope {
		return func(tx *gorm.DB) *gorm.DB { return tx.Where("posts.deleted = ?", false) }
	})
	reg.RegisterFilter(CheckPostTopicNonDeleteFilter, func(_ *Requester) Scope {
		return func(tx *gorm.DB) *gorm.DB {
			sub := tx.Session(&gorm.Session{NewDB: true}).
				Model(&model.Topic{}).Select("id").Where("deleted = ?", false)
			return tx.Where("posts.topic_id IN (?)", sub)
		}
	})
	reg.RegisterFilter(CheckPostDeleteBySelfFilter, func(r *Requester) Scope {
		if r == nil {
			return MatchNone()
		}
		uid := r.ID
		return func(tx *gorm.DB) *gorm.DB { return tx.Where("posts.delete_by_id = ?", uid) }
	})
	reg.RegisterFilter(CheckNotificationOwnerFilter, func(r *Requester) Scope {
		if r == nil {
			return MatchNone()
		}
		uid := r.ID
		return func(tx *gorm.DB) *gorm.DB { return tx.Where("notifications.to_id = ?", uid) }
	})
}
