package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bicarb-server/internal/config"
	"bicarb-server/internal/hook"
	"bicarb-server/internal/middleware"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/service"
	"bicarb-server/internal/testutils"
	"bicarb-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// setupTestRouter 装配完整的仓储/服务/管线/钩子栈并挂到 gin 引擎上。
func setupTestRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.InitConfig(t.TempDir())
	gdb := testutils.SetupDB(t)

	userStore := repo.NewUserRepository(gdb)
	groupStore := repo.NewGroupRepository(gdb)
	categoryStore := repo.NewCategoryRepository(gdb)
	topicStore := repo.NewTopicRepository(gdb)
	postStore := repo.NewPostRepository(gdb)
	notificationStore := repo.NewNotificationRepository(gdb)
	reportStore := repo.NewReportRepository(gdb)
	searchStore := repo.NewSearchRepository(gdb)

	users := service.NewUserService(userStore)
	groups := service.NewGroupService(groupStore, userStore)
	categories := service.NewCategoryService(gdb, categoryStore)
	posts := service.NewPostService(userStore, notificationStore)
	reports := service.NewReportService(reportStore, postStore)
	search := service.NewSearchService(gdb, searchStore, postStore)
	render := service.NewRenderService()

	policy := perm.NewForumPolicy(perm.NewForumRegistry())
	pipe := pipeline.New(gdb, policy)
	hook.RegisterAll(pipe, hook.Deps{
		UserStore:         userStore,
		GroupStore:        groupStore,
		CategoryStore:     categoryStore,
		TopicStore:        topicStore,
		PostStore:         postStore,
		NotificationStore: notificationStore,
		Render:            render,
		Posts:             posts,
		Categories:        categories,
		Groups:            groups,
		Search:            search,
	})

	auth := NewAuthHandler(pipe, users)
	preview := NewPreviewHandler(render, posts)
	user := NewUserHandler(pipe, users, userStore)
	topic := NewTopicHandler(pipe, topicStore, categoryStore)
	post := NewPostHandler(pipe, postStore)
	notification := NewNotificationHandler(pipe, notificationStore)
	report := NewReportHandler(pipe, reports, reportStore)
	searchHandler := NewSearchHandler(search)

	authRequired := middleware.JWTAuth(userStore, true)
	authOptional := middleware.JWTAuth(userStore, false)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", auth.Register)
	api.POST("/login", auth.Login)
	api.POST("/admin", auth.RegisterAdmin)
	api.POST("/preview", authRequired, preview.Preview)
	api.GET("/user/:idOrUsername", authOptional, user.Get)
	api.GET("/topic", authOptional, topic.List)
	api.GET("/topic/:id", authOptional, topic.Get)
	api.POST("/topic", authRequired, topic.Create)
	api.PATCH("/topic/:id", authRequired, topic.Patch)
	api.GET("/topic/:id/post", authOptional, post.ListByTopic)
	api.POST("/post", authRequired, post.Create)
	api.GET("/notification", authRequired, notification.List)
	api.GET("/notification/unread", authRequired, notification.UnreadCount)
	api.POST("/report", authRequired, report.Create)
	api.GET("/search", authOptional, searchHandler.Query)
	api.GET("/search/:postId/relate", authOptional, searchHandler.Relate)
	return gdb, r
}

// loginTokenFor 直接为已有用户签发令牌，跳过登录接口。
func loginTokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := utils.GenerateLoginToken(user.ID, user.Username, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func seedTopicOverHTTP(t *testing.T, gdb *gorm.DB, r *gin.Engine, author *model.User, title string) uint {
	t.Helper()
	category := testutils.CreateCategory(t, gdb, "general-"+title, 0, nil)
	w := doJSON(t, r, http.MethodPost, "/api/topic", loginTokenFor(t, author), gin.H{
		"title":       title,
		"body":        "body of " + title,
		"category_id": category.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create topic 期望 201，实际为 %d body=%s", w.Code, w.Body.String())
	}
	return uint(decodeBody(t, w)["id"].(float64))
}
