package hook

import (
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
)

func registerGroupHooks(p *pipeline.Pipeline, d Deps) {
	// 删除组：预定义组拒绝，成员迁回 3 号组
	p.Register(model.KindGroup, pipeline.PhasePreCommit, perm.OpDelete, "", func(ctx *pipeline.Context) error {
		group := ctx.Entity.(*model.Group)
		return d.Groups.ReassignMembers(ctx.DB, group)
	})
}
