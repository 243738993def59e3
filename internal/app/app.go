// Package app 完成依赖装配：仓储 → 服务 → 权限表/管线/钩子 → handler。
package app

import (
	"bicarb-server/internal/handler"
	"bicarb-server/internal/hook"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/service"

	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Group        *handler.GroupHandler
	Category     *handler.CategoryHandler
	Topic        *handler.TopicHandler
	Post         *handler.PostHandler
	Notification *handler.NotificationHandler
	Report       *handler.ReportHandler
	Search       *handler.SearchHandler
	Admin        *handler.AdminHandler
	Preview      *handler.PreviewHandler
}

type App struct {
	DB       *gorm.DB
	Pipeline *pipeline.Pipeline
	Policy   *perm.Policy

	UserStore         repo.UserStore
	GroupStore        repo.GroupStore
	CategoryStore     repo.CategoryStore
	TopicStore        repo.TopicStore
	PostStore         repo.PostStore
	NotificationStore repo.NotificationStore
	ReportStore       repo.ReportStore
	SearchStore       repo.SearchStore

	Users      *service.UserService
	Groups     *service.GroupService
	Categories *service.CategoryService
	Posts      *service.PostService
	Reports    *service.ReportService
	Search     *service.SearchService
	Counters   *service.CounterService
	Render     *service.RenderService

	Handlers Handlers
}

func New(db *gorm.DB) *App {
	a := &App{DB: db}

	a.UserStore = repo.NewUserRepository(db)
	a.GroupStore = repo.NewGroupRepository(db)
	a.CategoryStore = repo.NewCategoryRepository(db)
	a.TopicStore = repo.NewTopicRepository(db)
	a.PostStore = repo.NewPostRepository(db)
	a.NotificationStore = repo.NewNotificationRepository(db)
	a.ReportStore = repo.NewReportRepository(db)
	a.SearchStore = repo.NewSearchRepository(db)

	a.Users = service.NewUserService(a.UserStore)
	a.Groups = service.NewGroupService(a.GroupStore, a.UserStore)
	a.Categories = service.NewCategoryService(db, a.CategoryStore)
	a.Posts = service.NewPostService(a.UserStore, a.NotificationStore)
	a.Reports = service.NewReportService(a.ReportStore, a.PostStore)
	a.Search = service.NewSearchService(db, a.SearchStore, a.PostStore)
	a.Counters = service.NewCounterService(db)
	a.Render = service.NewRenderService()

	registry := perm.NewForumRegistry()
	a.Policy = perm.NewForumPolicy(registry)
	a.Pipeline = pipeline.New(db, a.Policy)

	hook.RegisterAll(a.Pipeline, hook.Deps{
		UserStore:         a.UserStore,
		GroupStore:        a.GroupStore,
		CategoryStore:     a.CategoryStore,
		TopicStore:        a.TopicStore,
		PostStore:         a.PostStore,
		NotificationStore: a.NotificationStore,
		Render:            a.Render,
		Posts:             a.Posts,
		Categories:        a.Categories,
		Groups:            a.Groups,
		Search:            a.Search,
	})

	a.Handlers = Handlers{
		Auth:         handler.NewAuthHandler(a.Pipeline, a.Users),
		User:         handler.NewUserHandler(a.Pipeline, a.Users, a.UserStore),
		Group:        handler.NewGroupHandler(a.Pipeline, a.Groups),
		Category:     handler.NewCategoryHandler(a.Pipeline, a.Categories, a.CategoryStore),
		Topic:        handler.NewTopicHandler(a.Pipeline, a.TopicStore, a.CategoryStore),
		Post:         handler.NewPostHandler(a.Pipeline, a.PostStore),
		Notification: handler.NewNotificationHandler(a.Pipeline, a.NotificationStore),
		Report:       handler.NewReportHandler(a.Pipeline, a.Reports, a.ReportStore),
		Search:       handler.NewSearchHandler(a.Search),
		Admin:        handler.NewAdminHandler(a.Counters),
		Preview:      handler.NewPreviewHandler(a.Render, a.Posts),
	}

	return a
}
