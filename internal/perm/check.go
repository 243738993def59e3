package perm

import (
	"fmt"

	"gorm.io/gorm"
)

// Scope 查询层谓词，下推到存储查询中执行（见 CompileFilter）。
type Scope func(tx *gorm.DB) *gorm.DB

// MatchAll 不附加任何条件。
func MatchAll() Scope {
	return func(tx *gorm.DB) *gorm.DB { return tx }
}

// MatchNone 恒为空结果集，匿名请求的过滤检查用它兜底。
func MatchNone() Scope {
	return func(tx *gorm.DB) *gorm.DB { return tx.Where("1 = 0") }
}

// check 三种检查之一：Identity / Instance / Filter，注册时恰好设置一个函数。
type check struct {
	name     string
	identity func(r *Requester) bool
	instance func(r *Requester, entity any, change *Change) bool
	filter   func(r *Requester) Scope
}

// Registry 具名检查的注册表，检查本身必须无副作用（求值是惰性短路的）。
type Registry struct {
	checks map[string]check
}

func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]check)}
}

// RegisterIdentity 仅依赖请求者身份的检查（create 场景实体尚不存在）。
func (reg *Registry) RegisterIdentity(name string, fn func(r *Requester) bool) {
	reg.add(check{name: name, identity: fn})
}

// RegisterInstance 依赖具体实体实例（及可选变更描述）的检查。
func (reg *Registry) RegisterInstance(name string, fn func(r *Requester, entity any, change *Change) bool) {
	reg.add(check{name: name, instance: fn})
}

// RegisterFilter 产出查询谓词的检查；无请求者时必须返回空集谓词而非报错。
func (reg *Registry) RegisterFilter(name string, fn func(r *Requester) Scope) {
	reg.add(check{name: name, filter: fn})
}

func (reg *Registry) add(c check) {
	if _, exists := reg.checks[c.name]; exists {
		panic(fmt.Sprintf("perm: duplicate check %q", c.name))
	}
	reg.checks[c.name] = c
}

func (reg *Registry) lookup(name string) check {
	c, ok := reg.checks[name]
	if !ok {
		panic(fmt.Sprintf("perm: unknown check %q", name))
	}
	return c
}
