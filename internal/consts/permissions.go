package consts

// 权限名常量，写入 Group.Permissions。

// admin
const (
	PermGroupAll    = "group.all"
	PermCategoryAll = "category.all"
	PermSettingAll  = "setting.all"
)

// mod（删除/恢复全部可见，含已删内容的读取）
const (
	PermUserLock          = "user.lock"
	PermIPRead            = "ip.read"
	PermReportManage      = "report.manage"
	PermTopicEditTitle    = "topic.edit.title"
	PermTopicEditCategory = "topic.edit.category"
	PermTopicLocked       = "topic.locked"
	PermTopicDelete       = "topic.delete"
	PermTopicPinned       = "topic.pinned"
	PermTopicFeature      = "topic.feature"
	PermPostEditContent   = "post.edit.content"
	PermPostDelete        = "post.delete"
)

// user（own 系列额外要求账号激活且未锁定）
const (
	PermTopicCreate          = "topic.create"
	PermTopicEditOwnTitle    = "topic.edit.own.title"
	PermTopicEditOwnCategory = "topic.edit.own.category"
	PermTopicLockedOwn       = "topic.locked.own"
	PermTopicDeleteOwn       = "topic.delete.own"
	PermPostCreate           = "post.create"
	PermPostEditOwnContent   = "post.edit.own.content"
	PermPostDeleteOwn        = "post.delete.own"
)

// AdminPermissions 1 号组默认权限。
func AdminPermissions() []string {
	return append([]string{PermGroupAll, PermCategoryAll, PermSettingAll}, ModPermissions()...)
}

// ModPermissions 2 号组默认权限。
func ModPermissions() []string {
	return append([]string{
		PermUserLock, PermIPRead, PermReportManage,
		PermTopicEditTitle, PermTopicEditCategory, PermTopicLocked,
		PermTopicDelete, PermTopicPinned, PermTopicFeature,
		PermPostEditContent, PermPostDelete,
	}, UserPermissions()...)
}

// UserPermissions 3 号组默认权限。
func UserPermissions() []string {
	return []string{
		PermTopicCreate, PermTopicEditOwnTitle, PermTopicEditOwnCategory,
		PermTopicLockedOwn, PermTopicDeleteOwn,
		PermPostCreate, PermPostEditOwnContent, PermPostDeleteOwn,
	}
}
