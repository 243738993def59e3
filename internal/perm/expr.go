package perm

import "gorm.io/gorm"

// 权限表达式在注册期构建为 AST，按请求求值，不做运行时解析。

type Expr interface{ isExpr() }

type andExpr struct{ l, r Expr }
type orExpr struct{ l, r Expr }
type notExpr struct{ e Expr }
type leafExpr struct{ name string }

func (andExpr) isExpr()  {}
func (orExpr) isExpr()   {}
func (notExpr) isExpr()  {}
func (leafExpr) isExpr() {}

// C 引用一个具名检查。
func C(name string) Expr { return leafExpr{name: name} }

// And 逻辑与，短路求值。多参时左结合。
func And(l, r Expr, rest ...Expr) Expr {
	e := Expr(andExpr{l: l, r: r})
	for _, next := range rest {
		e = andExpr{l: e, r: next}
	}
	return e
}

// Or 逻辑或，短路求值。多参时左结合。
func Or(l, r Expr, rest ...Expr) Expr {
	e := Expr(orExpr{l: l, r: r})
	for _, next := range rest {
		e = orExpr{l: e, r: next}
	}
	return e
}

// Not 逻辑非。
func Not(e Expr) Expr { return notExpr{e: e} }

// Evaluate 针对单个实体求布尔值；用于 create/update/delete 以及单实体字段读取。
// 过滤检查出现在布尔上下文时按不满足处理（集合读取请走 CompileFilter）。
// 匿名（r == nil）是合法输入，引用身份的检查自然返回 false，绝不报错。
func (reg *Registry) Evaluate(expr Expr, r *Requester, entity any, change *Change) bool {
	switch e := expr.(type) {
	case andExpr:
		return reg.Evaluate(e.l, r, entity, change) && reg.Evaluate(e.r, r, entity, change)
	case orExpr:
		return reg.Evaluate(e.l, r, entity, change) || reg.Evaluate(e.r, r, entity, change)
	case notExpr:
		return !reg.Evaluate(e.e, r, entity, change)
	case leafExpr:
		c := reg.lookup(e.name)
		switch {
		case c.identity != nil:
			return c.identity(r)
		case c.instance != nil:
			return c.instance(r, entity, change)
		default:
			return false
		}
	}
	return false
}

// compiled 中间结果，做常量折叠以免生成空洞的 SQL 条件。
type compiled struct {
	all   bool
	none  bool
	scope Scope
}

// CompileFilter 将表达式编译为查询谓词（谓词下推），用于集合读取授权。
// 身份检查折叠为常量；实例检查在集合上下文不可逐行求值，按空集处理。
func (reg *Registry) CompileFilter(expr Expr, r *Requester) Scope {
	c := reg.compile(expr, r)
	switch {
	case c.all:
		return MatchAll()
	case c.none:
		return MatchNone()
	default:
		return c.scope
	}
}

func (reg *Registry) compile(expr Expr, r *Requester) compiled {
	switch e := expr.(type) {
	case andExpr:
		l := reg.compile(e.l, r)
		if l.none {
			return compiled{none: true}
		}
		rr := reg.compile(e.r, r)
		if rr.none {
			return compiled{none: true}
		}
		if l.all {
			return rr
		}
		if rr.all {
			return l
		}
		ls, rs := l.scope, rr.scope
		return compiled{scope: func(tx *gorm.DB) *gorm.DB { return rs(ls(tx)) }}
	case orExpr:
		l := reg.compile(e.l, r)
		if l.all {
			return compiled{all: true}
		}
		rr := reg.compile(e.r, r)
		if rr.all {
			return compiled{all: true}
		}
		if l.none {
			return rr
		}
		if rr.none {
			return l
		}
		ls, rs := l.scope, rr.scope
		return compiled{scope: func(tx *gorm.DB) *gorm.DB {
			fresh := func() *gorm.DB { return tx.Session(&gorm.Session{NewDB: true}) }
			return tx.Where(ls(fresh()).Or(rs(fresh())))
		}}
	case notExpr:
		inner := reg.compile(e.e, r)
		switch {
		case inner.all:
			return compiled{none: true}
		case inner.none:
			return compiled{all: true}
		default:
			is := inner.scope
			return compiled{scope: func(tx *gorm.DB) *gorm.DB {
				return tx.Not(is(tx.Session(&gorm.Session{NewDB: true})))
			}}
		}
	case leafExpr:
		c := reg.lookup(e.name)
		switch {
		case c.identity != nil:
			if c.identity(r) {
				return compiled{all: true}
			}
			return compiled{none: true}
		case c.filter != nil:
			return compiled{scope: c.filter(r)}
		default:
			// 实例检查无法在集合上下文逐行求值
			return compiled{none: true}
		}
	}
	return compiled{none: true}
}
