package pipeline

import (
	"fmt"
	"log"
	"time"

	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	platformservice "bicarb-server/internal/platform/service"

	"gorm.io/gorm"
)

// 变更管线：每次实体写入依次经过
// PreSecurity → Authorize → PreCommit(+落库，同一事务) → PostCommit。
// PreSecurity/Authorize 失败时无任何持久化效果；PreCommit 失败回滚整个事务；
// PostCommit 在提交之后执行，失败仅记录日志，绝不回滚已提交的写入。

type Phase string

const (
	PhasePreSecurity Phase = "pre_security"
	PhasePreCommit   Phase = "pre_commit"
	PhasePostCommit  Phase = "post_commit"
)

// Handler 生命周期处理器。PreCommit 阶段 ctx.DB 为事务句柄。
type Handler func(ctx *Context) error

type Context struct {
	DB        *gorm.DB
	Requester *perm.Requester
	Entity    any
	Change    *perm.Change // 仅字段级处理器收到
	ClientIP  string
	Now       time.Time
}

type hookKey struct {
	kind  model.Kind
	phase Phase
	op    perm.Operation
	field string
}

type Pipeline struct {
	db     *gorm.DB
	policy *perm.Policy
	hooks  map[hookKey][]Handler
}

func New(db *gorm.DB, policy *perm.Policy) *Pipeline {
	return &Pipeline{
		db:     db,
		policy: policy,
		hooks:  make(map[hookKey][]Handler),
	}
}

func (p *Pipeline) Policy() *perm.Policy { return p.policy }

// Register 注册处理器；同一键下可注册多个，跨处理器的执行顺序不属于契约。
func (p *Pipeline) Register(kind model.Kind, phase Phase, op perm.Operation, field string, h Handler) {
	k := hookKey{kind: kind, phase: phase, op: op, field: field}
	p.hooks[k] = append(p.hooks[k], h)
}

// CreateRequest Fields 为调用方显式提供的字段，逐字段做创建授权。
type CreateRequest struct {
	Kind      model.Kind
	Entity    any
	Fields    []string
	Requester *perm.Requester
	ClientIP  string
}

func (p *Pipeline) Create(req CreateRequest) error {
	ctx := &Context{DB: p.db, Requester: req.Requester, Entity: req.Entity, ClientIP: req.ClientIP, Now: time.Now()}

	if err := p.runPhase(ctx, req.Kind, PhasePreSecurity, perm.OpCreate, req.Fields, nil); err != nil {
		return err
	}

	if len(req.Fields) == 0 {
		if !p.policy.Allowed(req.Kind, perm.OpCreate, "", req.Requester, req.Entity, nil) {
			return platformservice.NewForbiddenError(fmt.Sprintf("create %s denied", req.Kind))
		}
	}
	for _, field := range req.Fields {
		if !p.policy.Allowed(req.Kind, perm.OpCreate, field, req.Requester, req.Entity, nil) {
			return platformservice.NewForbiddenError(fmt.Sprintf("create %s.%s denied", req.Kind, field))
		}
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		ctx.DB = tx
		if err := tx.Create(req.Entity).Error; err != nil {
			return err
		}
		if err := p.runPhase(ctx, req.Kind, PhasePreCommit, perm.OpCreate, req.Fields, nil); err != nil {
			return err
		}
		return tx.Save(req.Entity).Error
	})
	if err != nil {
		return err
	}

	ctx.DB = p.db
	p.runPostCommit(ctx, req.Kind, perm.OpCreate, req.Fields, nil)
	return nil
}

// UpdateRequest Changes 描述本次被修改的字段（含新旧值），实体已带新值。
type UpdateRequest struct {
	Kind      model.Kind
	Entity    any
	Changes   []perm.Change
	Requester *perm.Requester
	ClientIP  string
}

func (p *Pipeline) Update(req UpdateRequest) error {
	if len(req.Changes) == 0 {
		return platformservice.NewValidationError("no fields to update")
	}
	fields := make([]string, 0, len(req.Changes))
	for _, c := range req.Changes {
		fields = append(fields, c.Field)
	}
	ctx := &Context{DB: p.db, Requester: req.Requester, Entity: req.Entity, ClientIP: req.ClientIP, Now: time.Now()}

	if err := p.runPhase(ctx, req.Kind, PhasePreSecurity, perm.OpUpdate, fields, req.Changes); err != nil {
		return err
	}

	for i := range req.Changes {
		c := &req.Changes[i]
		if !p.policy.Allowed(req.Kind, perm.OpUpdate, c.Field, req.Requester, req.Entity, c) {
			return platformservice.NewForbiddenError(fmt.Sprintf("update %s.%s denied", req.Kind, c.Field))
		}
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		ctx.DB = tx
		if err := p.runPhase(ctx, req.Kind, PhasePreCommit, perm.OpUpdate, fields, req.Changes); err != nil {
			return err
		}
		return tx.Save(req.Entity).Error
	})
	if err != nil {
		return err
	}

	ctx.DB = p.db
	p.runPostCommit(ctx, req.Kind, perm.OpUpdate, fields, req.Changes)
	return nil
}

type DeleteRequest struct {
	Kind      model.Kind
	Entity    any
	Requester *perm.Requester
	ClientIP  string
}

func (p *Pipeline) Delete(req DeleteRequest) error {
	ctx := &Context{DB: p.db, Requester: req.Requester, Entity: req.Entity, ClientIP: req.ClientIP, Now: time.Now()}

	if err := p.runPhase(ctx, req.Kind, PhasePreSecurity, perm.OpDelete, nil, nil); err != nil {
		return err
	}

	if !p.policy.Allowed(req.Kind, perm.OpDelete, "", req.Requester, req.Entity, nil) {
		return platformservice.NewForbiddenError(fmt.Sprintf("delete %s denied", req.Kind))
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		ctx.DB = tx
		if err := p.runPhase(ctx, req.Kind, PhasePreCommit, perm.OpDelete, nil, nil); err != nil {
			return err
		}
		return tx.Delete(req.Entity).Error
	})
	if err != nil {
		return err
	}

	ctx.DB = p.db
	p.runPostCommit(ctx, req.Kind, perm.OpDelete, nil, nil)
	return nil
}

// runPhase 先跑实体级处理器，再按字段顺序跑字段级处理器。
func (p *Pipeline) runPhase(ctx *Context, kind model.Kind, phase Phase, op perm.Operation, fields []string, changes []perm.Change) error {
	ctx.Change = nil
	for _, h := range p.hooks[hookKey{kind: kind, phase: phase, op: op}] {
		if err := h(ctx); err != nil {
			return err
		}
	}
	for i, field := range fields {
		if changes != nil {
			ctx.Change = &changes[i]
		}
		for _, h := range p.hooks[hookKey{kind: kind, phase: phase, op: op, field: field}] {
			if err := h(ctx); err != nil {
				return err
			}
		}
	}
	ctx.Change = nil
	return nil
}

// runPostCommit 提交后尽力而为：失败只记日志，不影响已提交的写入。
func (p *Pipeline) runPostCommit(ctx *Context, kind model.Kind, op perm.Operation, fields []string, changes []perm.Change) {
	ctx.Change = nil
	run := func(key hookKey) {
		for _, h := range p.hooks[key] {
			if err := h(ctx); err != nil {
				log.Printf("⚠️ post commit hook failed (%s %s %s): %v", kind, op, key.field, err)
			}
		}
	}
	run(hookKey{kind: kind, phase: PhasePostCommit, op: op})
	for i, field := range fields {
		if changes != nil {
			ctx.Change = &changes[i]
		}
		run(hookKey{kind: kind, phase: PhasePostCommit, op: op, field: field})
	}
	ctx.Change = nil
}
