package perm

import (
	"bicarb-server/internal/consts"
	"bicarb-server/internal/model"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type policyKey struct {
	kind  model.Kind
	op    Operation
	field string
}

// Policy (entityKind, operation, optional field) → 权限表达式。
// 查找取最具体匹配：字段级规则优先于实体级默认；两者皆无则放行。
type Policy struct {
	reg   *Registry
	rules map[policyKey]Expr
}

func NewPolicy(reg *Registry) *Policy {
	return &Policy{reg: reg, rules: make(map[policyKey]Expr)}
}

func (p *Policy) Registry() *Registry { return p.reg }

// Set 注册一条规则，field 为空表示实体级默认。
func (p *Policy) Set(kind model.Kind, op Operation, field string, expr Expr) {
	p.rules[policyKey{kind: kind, op: op, field: field}] = expr
}

// Lookup 最具体匹配查找。
func (p *Policy) Lookup(kind model.Kind, op Operation, field string) (Expr, bool) {
	if field != "" {
		if expr, ok := p.rules[policyKey{kind: kind, op: op, field: field}]; ok {
			return expr, true
		}
	}
	expr, ok := p.rules[policyKey{kind: kind, op: op, field: ""}]
	return expr, ok
}

// Allowed 对单实体操作求值；无规则视为放行。
func (p *Policy) Allowed(kind model.Kind, op Operation, field string, r *Requester, entity any, change *Change) bool {
	expr, ok := p.Lookup(kind, op, field)
	if !ok {
		return true
	}
	return p.reg.Evaluate(expr, r, entity, change)
}

// ReadScope 集合读取授权：把实体级 read 表达式编译为查询谓词。
// 无规则时不附加条件。
func (p *Policy) ReadScope(kind model.Kind, r *Requester) Scope {
	expr, ok := p.Lookup(kind, OpRead, "")
	if !ok {
		return MatchAll()
	}
	return p.reg.CompileFilter(expr, r)
}

// NewForumPolicy 论坛的完整权限表。
func NewForumPolicy(reg *Registry) *Policy {
	p := NewPolicy(reg)

	none := C(CheckRoleNone)
	all := C(CheckRoleAll)

	// user：注册对所有人开放（仅限四个字段），资料字段本人可改，
	// 锁定与用户组变更分别由 user.lock / group.all 把关。
	p.Set(model.KindUser, OpCreate, "", none)
	for _, f := range []string{"username", "nickname", "email", "password"} {
		p.Set(model.KindUser, OpCreate, f, all)
	}
	p.Set(model.KindUser, OpRead, "password", none)
	p.Set(model.KindUser, OpRead, "email", Or(C(CheckEmailPublic), C(CheckUserOwner)))
	p.Set(model.KindUser, OpRead, "lastSignIp", C(consts.PermIPRead))
	p.Set(model.KindUser, OpUpdate, "", none)
	for _, f := range []string{"emailPublic", "bio", "website", "github"} {
		p.Set(model.KindUser, OpUpdate, f, C(CheckUserOwner))
	}
	p.Set(model.KindUser, OpUpdate, consts.FieldLockedUntil, C(consts.PermUserLock))
	p.Set(model.KindUser, OpUpdate, "group", C(consts.PermGroupAll))
	p.Set(model.KindUser, OpDelete, "", none)

	// group
	p.Set(model.KindGroup, OpCreate, "", C(consts.PermGroupAll))
	p.Set(model.KindGroup, OpUpdate, "", C(consts.PermGroupAll))
	p.Set(model.KindGroup, OpDelete, "", C(consts.PermGroupAll))

	// category：树结构字段只能经 patchLocation 维护
	p.Set(model.KindCategory, OpCreate, "", C(consts.PermCategoryAll))
	p.Set(model.KindCategory, OpUpdate, "", C(consts.PermCategoryAll))
	p.Set(model.KindCategory, OpDelete, "", C(consts.PermCategoryAll))
	for _, f := range []string{"position", "parent", "topicCount"} {
		p.Set(model.KindCategory, OpUpdate, f, none)
	}

	// topic
	p.Set(model.KindTopic, OpCreate, "", none)
	for _, f := range []string{consts.FieldTitle, consts.FieldCategories, consts.FieldBody} {
		p.Set(model.KindTopic, OpCreate, f, C(consts.PermTopicCreate))
	}
	p.Set(model.KindTopic, OpRead, "",
		Or(C(consts.PermTopicDelete),
			Or(C(CheckTopicNonDeleteFilter),
				And(C(consts.PermTopicDeleteOwn), C(CheckTopicDeleteBySelfFilter)))))
	p.Set(model.KindTopic, OpUpdate, "", none)
	p.Set(model.KindTopic, OpUpdate, consts.FieldTitle,
		Or(And(C(CheckTopicOwner), C(consts.PermTopicEditOwnTitle)), C(consts.PermTopicEditTitle)))
	p.Set(model.KindTopic, OpUpdate, consts.FieldCategories,
		Or(And(C(CheckTopicOwner), C(consts.PermTopicEditOwnCategory)), C(consts.PermTopicEditCategory)))
	p.Set(model.KindTopic, OpUpdate, consts.FieldLocked,
		Or(C(consts.PermTopicLocked),
			And(C(CheckTopicOwner), C(consts.PermTopicLockedOwn), C(CheckTopicNonLockedByOther))))
	p.Set(model.KindTopic, OpUpdate, consts.FieldDelete,
		Or(C(consts.PermTopicDelete),
			And(C(CheckTopicOwner), C(consts.PermTopicDeleteOwn), C(CheckTopicNonDeleteByOther))))
	p.Set(model.KindTopic, OpUpdate, consts.FieldPinned, C(consts.PermTopicPinned))
	p.Set(model.KindTopic, OpUpdate, consts.FieldFeature, C(consts.PermTopicFeature))
	p.Set(model.KindTopic, OpDelete, "", none)

	// post
	p.Set(model.KindPost, OpCreate, "", none)
	p.Set(model.KindPost, OpCreate, consts.FieldRaw, C(consts.PermPostCreate))
	p.Set(model.KindPost, OpCreate, "topic",
		And(C(consts.PermPostCreate), C(CheckPostTopicNonDelete), C(CheckPostTopicNonLocked)))
	p.Set(model.KindPost, OpRead, "",
		Or(C(consts.PermPostDelete),
			And(C(CheckPostTopicNonDeleteFilter),
				Or(C(CheckPostNonDeleteFilter),
					And(C(consts.PermPostDeleteOwn), C(CheckPostDeleteBySelfFilter))))))
	p.Set(model.KindPost, OpRead, "ip", C(consts.PermIPRead))
	p.Set(model.KindPost, OpUpdate, "", none)
	p.Set(model.KindPost, OpUpdate, consts.FieldRaw,
		Or(And(C(consts.PermPostEditOwnContent), C(CheckPostOwner)), C(consts.PermPostEditContent)))
	p.Set(model.KindPost, OpUpdate, consts.FieldDelete,
		Or(C(consts.PermPostDelete),
			And(C(CheckPostOwner), C(consts.PermPostDeleteOwn), C(CheckPostNonDeleteByOther))))
	p.Set(model.KindPost, OpDelete, "", none)

	// notification：仅收件人可读、可标记已读，一律不可直接创建
	p.Set(model.KindNotification, OpCreate, "", none)
	p.Set(model.KindNotification, OpRead, "", C(CheckNotificationOwnerFilter))
	p.Set(model.KindNotification, OpUpdate, "", none)
	p.Set(model.KindNotification, OpUpdate, consts.FieldReadAt, C(CheckNotificationOwner))
	p.Set(model.KindNotification, OpDelete, "", none)

	// report
	p.Set(model.KindReport, OpCreate, "", none)
	p.Set(model.KindReport, OpCreate, "post", all)
	p.Set(model.KindReport, OpCreate, "reason", all)
	p.Set(model.KindReport, OpRead, "", C(consts.PermReportManage))
	p.Set(model.KindReport, OpUpdate, "", none)
	p.Set(model.KindReport, OpDelete, "", none)

	return p
}
