package hook

import (
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	platformservice "bicarb-server/internal/platform/service"
	"bicarb-server/internal/utils"
)

func registerReportHooks(p *pipeline.Pipeline, d Deps) {
	// 举报创建：举报人取自请求者，被举报帖必须存在
	p.Register(model.KindReport, pipeline.PhasePreSecurity, perm.OpCreate, "", func(ctx *pipeline.Context) error {
		report := ctx.Entity.(*model.Report)

		if err := utils.Validate(report); err != nil {
			return platformservice.NewValidationError(err.Error())
		}
		if ctx.Requester == nil {
			return platformservice.NewUnauthorizedError("authentication required")
		}
		if _, err := d.PostStore.FindByID(report.PostID); err != nil {
			return platformservice.NewNotFoundError("unknown post")
		}
		report.ByID = ctx.Requester.ID
		report.CreateAt = ctx.Now
		return nil
	})
}
