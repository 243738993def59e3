package service

import (
	"sync/atomic"

	repo "bicarb-server/internal/repository"

	"gorm.io/gorm"
)

type UserService struct {
	userStore repo.UserStore
}

type GroupService struct {
	groupStore repo.GroupStore
	userStore  repo.UserStore
}

type CategoryService struct {
	db            *gorm.DB
	categoryStore repo.CategoryStore
}

type PostService struct {
	userStore         repo.UserStore
	notificationStore repo.NotificationStore
}

type ReportService struct {
	reportStore repo.ReportStore
	postStore   repo.PostStore
}

type SearchService struct {
	db          *gorm.DB
	searchStore repo.SearchStore
	postStore   repo.PostStore
	indexing    atomic.Bool
}

type CounterService struct {
	db *gorm.DB
}

func NewUserService(userStore repo.UserStore) *UserService {
	return &UserService{userStore: userStore}
}

func NewGroupService(groupStore repo.GroupStore, userStore repo.UserStore) *GroupService {
	return &GroupService{groupStore: groupStore, userStore: userStore}
}

func NewCategoryService(db *gorm.DB, categoryStore repo.CategoryStore) *CategoryService {
	return &CategoryService{db: db, categoryStore: categoryStore}
}

func NewPostService(userStore repo.UserStore, notificationStore repo.NotificationStore) *PostService {
	return &PostService{userStore: userStore, notificationStore: notificationStore}
}

func NewReportService(reportStore repo.ReportStore, postStore repo.PostStore) *ReportService {
	return &ReportService{reportStore: reportStore, postStore: postStore}
}

func NewSearchService(db *gorm.DB, searchStore repo.SearchStore, postStore repo.PostStore) *SearchService {
	return &SearchService{db: db, searchStore: searchStore, postStore: postStore}
}

func NewCounterService(db *gorm.DB) *CounterService {
	return &CounterService{db: db}
}
