package router

import (
	"bicarb-server/internal/app"
	"bicarb-server/internal/consts"
	"bicarb-server/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type Router struct {
	app *app.App
}

func NewRouter(a *app.App) *Router {
	return &Router{app: a}
}

func (rt *Router) Init(r *gin.Engine) {
	api := r.Group("/api")

	authRequired := middleware.JWTAuth(rt.app.UserStore, true)
	authOptional := middleware.JWTAuth(rt.app.UserStore, false)
	writeLimiter := middleware.RateLimit(rate.Limit(1), 5)

	h := rt.app.Handlers

	// 认证
	api.POST("/register", writeLimiter, h.Auth.Register)
	api.POST("/login", writeLimiter, h.Auth.Login)
	// 首次部署引导：仅用户表为空时可用
	api.POST("/admin", writeLimiter, h.Auth.RegisterAdmin)

	// 用户
	api.GET("/user/:idOrUsername", authOptional, h.User.Get)
	api.PATCH("/user/profile", authRequired, h.User.PatchProfile)
	api.PATCH("/user/password", authRequired, h.User.PatchPassword)
	api.POST("/user/email/active", authRequired, h.User.SendActiveEmail)
	api.GET("/user/email/verify/:token", h.User.VerifyEmail)
	api.POST("/user/password/forgot", writeLimiter, h.User.ForgotPassword)
	api.POST("/user/password/reset", writeLimiter, h.User.ResetPassword)
	api.PATCH("/user/:idOrUsername/lock", authRequired, h.User.Lock)
	api.PATCH("/user/:idOrUsername/group", authRequired, h.User.ChangeGroup)

	// 用户组
	api.GET("/group", h.Group.List)
	api.POST("/group", authRequired, h.Group.Create)
	api.PATCH("/group/:id", authRequired, h.Group.Patch)
	api.DELETE("/group/:id", authRequired, h.Group.Delete)

	// 分类
	api.GET("/category", h.Category.List)
	api.POST("/category", authRequired, h.Category.Create)
	api.DELETE("/category/:id", authRequired, h.Category.Delete)
	api.PATCH("/category/:id/location", authRequired, h.Category.PatchLocation)

	// 主题与帖子
	api.GET("/topic", authOptional, h.Topic.List)
	api.GET("/topic/:id", authOptional, h.Topic.Get)
	api.POST("/topic", authRequired, writeLimiter, h.Topic.Create)
	api.PATCH("/topic/:id", authRequired, h.Topic.Patch)
	api.GET("/topic/:id/post", authOptional, h.Post.ListByTopic)
	api.POST("/post", authRequired, writeLimiter, h.Post.Create)
	api.PATCH("/post/:id", authRequired, h.Post.Patch)

	// 通知
	api.GET("/notification", authRequired, h.Notification.List)
	api.GET("/notification/unread", authRequired, h.Notification.UnreadCount)
	api.PATCH("/notification/:id/read", authRequired, h.Notification.MarkRead)
	api.POST("/notification/read-all", authRequired, h.Notification.MarkAllRead)

	// 举报
	api.POST("/report", authRequired, writeLimiter, h.Report.Create)
	api.GET("/report", authRequired, h.Report.List)
	api.POST("/report/post/:postId/handle", authRequired, h.Report.HandleByPost)

	// 搜索与预览
	api.GET("/search", authOptional, h.Search.Query)
	api.GET("/search/:postId/relate", authOptional, h.Search.Relate)
	api.POST("/preview", authRequired, h.Preview.Preview)

	// 管理
	admin := api.Group("/admin", authRequired, middleware.RequirePermission(consts.PermSettingAll))
	admin.POST("/search/rebuild", h.Search.Rebuild)
	admin.POST("/search/safe-rebuild", h.Search.SafeRebuild)
	admin.GET("/search/indexing", h.Search.Indexing)
	admin.POST("/recount", h.Admin.Recount)
}
