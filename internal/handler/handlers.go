package handler

import (
	"bicarb-server/internal/pipeline"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/service"
)

type AuthHandler struct {
	pipe  *pipeline.Pipeline
	users *service.UserService
}

type UserHandler struct {
	pipe      *pipeline.Pipeline
	users     *service.UserService
	userStore repo.UserStore
}

type GroupHandler struct {
	pipe   *pipeline.Pipeline
	groups *service.GroupService
}

type CategoryHandler struct {
	pipe          *pipeline.Pipeline
	categories    *service.CategoryService
	categoryStore repo.CategoryStore
}

type TopicHandler struct {
	pipe          *pipeline.Pipeline
	topicStore    repo.TopicStore
	categoryStore repo.CategoryStore
}

type PostHandler struct {
	pipe      *pipeline.Pipeline
	postStore repo.PostStore
}

type NotificationHandler struct {
	pipe              *pipeline.Pipeline
	notificationStore repo.NotificationStore
}

type ReportHandler struct {
	pipe        *pipeline.Pipeline
	reports     *service.ReportService
	reportStore repo.ReportStore
}

type SearchHandler struct {
	search *service.SearchService
}

type AdminHandler struct {
	counters *service.CounterService
}

type PreviewHandler struct {
	render *service.RenderService
	posts  *service.PostService
}

func NewAuthHandler(pipe *pipeline.Pipeline, users *service.UserService) *AuthHandler {
	return &AuthHandler{pipe: pipe, users: users}
}

func NewUserHandler(pipe *pipeline.Pipeline, users *service.UserService, userStore repo.UserStore) *UserHandler {
	return &UserHandler{pipe: pipe, users: users, userStore: userStore}
}

func NewGroupHandler(pipe *pipeline.Pipeline, groups *service.GroupService) *GroupHandler {
	return &GroupHandler{pipe: pipe, groups: groups}
}

func NewCategoryHandler(pipe *pipeline.Pipeline, categories *service.CategoryService, categoryStore repo.CategoryStore) *CategoryHandler {
	return &CategoryHandler{pipe: pipe, categories: categories, categoryStore: categoryStore}
}

func NewTopicHandler(pipe *pipeline.Pipeline, topicStore repo.TopicStore, categoryStore repo.CategoryStore) *TopicHandler {
	return &TopicHandler{pipe: pipe, topicStore: topicStore, categoryStore: categoryStore}
}

func NewPostHandler(pipe *pipeline.Pipeline, postStore repo.PostStore) *PostHandler {
	return &PostHandler{pipe: pipe, postStore: postStore}
}

func NewNotificationHandler(pipe *pipeline.Pipeline, notificationStore repo.NotificationStore) *NotificationHandler {
	return &NotificationHandler{pipe: pipe, notificationStore: notificationStore}
}

func NewReportHandler(pipe *pipeline.Pipeline, reports *service.ReportService, reportStore repo.ReportStore) *ReportHandler {
	return &ReportHandler{pipe: pipe, reports: reports, reportStore: reportStore}
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

func NewAdminHandler(counters *service.CounterService) *AdminHandler {
	return &AdminHandler{counters: counters}
}

func NewPreviewHandler(render *service.RenderService, posts *service.PostService) *PreviewHandler {
	return &PreviewHandler{render: render, posts: posts}
}
