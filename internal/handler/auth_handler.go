package handler

import (
	"net/http"

	"bicarb-server/internal/common/httpx"
	"bicarb-server/internal/model"
	"bicarb-server/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// Register 注册新用户。冲突返回 409 并携带逐项错误码
// （4091 用户名 / 4092 邮箱 / 4093 昵称）。
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Nickname string `json:"nickname" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	user := &model.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Email:    req.Email,
		Password: req.Password,
	}
	err := h.pipe.Create(pipeline.CreateRequest{
		Kind:      model.KindUser,
		Entity:    user,
		Fields:    []string{"username", "nickname", "email", "password"},
		Requester: nil, // 注册对匿名开放
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "注册失败，请稍后重试")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "message": "注册成功，请前往邮箱激活账号"})
}

// RegisterAdmin 首次部署引导：仅当用户表为空时允许注册，
// 新用户直接归入 1 号组并激活。
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Nickname string `json:"nickname" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	exists, err := h.users.HasAnyUser()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	if exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin must be first user"})
		return
	}

	user := &model.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Email:    req.Email,
		Password: req.Password,
	}
	err = h.pipe.Create(pipeline.CreateRequest{
		Kind:     model.KindUser,
		Entity:   user,
		Fields:   []string{"username", "nickname", "email", "password"},
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "注册失败，请稍后重试")
		return
	}
	if err := h.users.PromoteToAdmin(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败，请稍后重试"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "group_id": user.GroupID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	token, user, err := h.users.Login(req.Username, req.Password, c.ClientIP())
	if err != nil {
		httpx.WriteServiceError(c, err, "登录失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
