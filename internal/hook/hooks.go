// Package hook 注册各实体在变更管线上的生命周期处理器。
// 处理器按 (实体, 阶段, 操作, 字段) 定位，PreCommit 与实体落库同事务。
package hook

import (
	"bicarb-server/internal/pipeline"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/service"
)

type Deps struct {
	UserStore         repo.UserStore
	GroupStore        repo.GroupStore
	CategoryStore     repo.CategoryStore
	TopicStore        repo.TopicStore
	PostStore         repo.PostStore
	NotificationStore repo.NotificationStore

	Render     *service.RenderService
	Posts      *service.PostService
	Categories *service.CategoryService
	Groups     *service.GroupService
	Search     *service.SearchService
}

// RegisterAll 一次性挂载全部处理器。
func RegisterAll(p *pipeline.Pipeline, d Deps) {
	registerUserHooks(p, d)
	registerGroupHooks(p, d)
	registerCategoryHooks(p, d)
	registerTopicHooks(p, d)
	registerPostHooks(p, d)
	registerReportHooks(p, d)
}
