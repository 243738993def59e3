package perm

import "time"

// Requester 当前请求者的身份快照，由外层认证中间件解析。
// 匿名请求以 nil *Requester 表示，检查求值时不会报错。
type Requester struct {
	ID          uint
	Username    string
	Active      bool
	LockedUntil *time.Time
	Permissions map[string]struct{}
}

// HasPermission nil 安全：匿名请求恒为 false。
func (r *Requester) HasPermission(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Permissions[name]
	return ok
}

// Valid 账号已激活且未处于锁定期。匿名恒为 false。
func (r *Requester) Valid(now time.Time) bool {
	if r == nil {
		return false
	}
	return r.Active && (r.LockedUntil == nil || r.LockedUntil.Before(now))
}

// Is 请求者是否为指定用户。
func (r *Requester) Is(userID uint) bool {
	return r != nil && r.ID == userID
}

// Change 字段变更描述（更新操作的 before/after）。
type Change struct {
	Field string
	Old   any
	New   any
}
