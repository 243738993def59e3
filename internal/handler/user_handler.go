package handler

import (
	"net/http"
	"time"

	"bicarb-server/internal/common/httpx"
	"bicarb-server/internal/consts"
	"bicarb-server/internal/middleware"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// userView 按请求者权限裁剪后的用户视图。
func (h *UserHandler) userView(c *gin.Context, user *model.User) gin.H {
	r := middleware.GetRequester(c)
	policy := h.pipe.Policy()

	view := gin.H{
		"id": user.ID,
		"username": user.Username,
		"nickname": user.Nickname,
		"email_public": user.EmailPublic,
		"avatar": user.Avatar,
		"bio": user.Bio,
		"website": user.Website,
		"github": user.Github,
		"topic_count": user.TopicCount,
		"post_count": user.PostCount,
		"active": user.Active,
		"locked_at": user.LockedAt,
		"locked_until": user.LockedUntil,
		"last_sign_in_at": user.LastSignInAt,
		"create_at": user.CreateAt,
		"group_id": user.GroupID,
	}
	if policy.Allowed(model.KindUser, perm.OpRead, "email", r, user, nil) {
		view["email"] = user.Email
	}
	if policy.Allowed(model.KindUser, perm.OpRead, "lastSignIp", r, user, nil) {
		view["last_sign_ip"] = user.LastSignIP
	}
	return view
}

// Get 按 ID 或用户名查用户。
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.FindByIDOrUsername(c.Param("idOrUsername"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}
	c.JSON(http.StatusOK, h.userView(c, user))
}

// PatchProfile 更新本人资料字段。
func (h *UserHandler) PatchProfile(c *gin.Context) {
	r := middleware.GetRequester(c)
	user, err := h.userStore.FindByID(r.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}

	var req struct {
		EmailPublic *bool   `json:"email_public"`
		Bio         *string `json:"bio"`
		Website     *string `json:"website"`
		Github      *string `json:"github"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	var changes []perm.Change
	if req.EmailPublic != nil {
		changes = append(changes, perm.Change{Field: "emailPublic", Old: user.EmailPublic, New: *req.EmailPublic})
		user.EmailPublic = *req.EmailPublic
	}
	if req.Bio != nil {
		changes = append(changes, perm.Change{Field: "bio", Old: user.Bio, New: *req.Bio})
		user.Bio = *req.Bio
	}
	if req.Website != nil {
		changes = append(changes, perm.Change{Field: "website", Old: user.Website, New: *req.Website})
		user.Website = *req.Website
	}
	if req.Github != nil {
		changes = append(changes, perm.Change{Field: "github", Old: user.Github, New: *req.Github})
		user.Github = *req.Github
	}

	err = h.pipe.Update(pipeline.UpdateRequest{
		Kind:      model.KindUser,
		Entity:    user,
		Changes:   changes,
		Requester: r,
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "更新失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, h.userView(c, user))
}

// Lock 设置/解除账号锁定（user.lock 权限）。lockedUntil 传 null 表示解锁。
func (h *UserHandler) Lock(c *gin.Context) {
	user, err := h.users.FindByIDOrUsername(c.Param("idOrUsername"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}

	var req struct {
		LockedUntil *time.Time `json:"locked_until"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	old := user.LockedUntil
	user.LockedUntil = req.LockedUntil

	err = h.pipe.Update(pipeline.UpdateRequest{
		Kind:      model.KindUser,
		Entity:    user,
		Changes:   []perm.Change{{Field: consts.FieldLockedUntil, Old: old, New: req.LockedUntil}},
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "操作失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, h.userView(c, user))
}

// ChangeGroup 变更用户所属组（group.all 权限）。
func (h *UserHandler) ChangeGroup(c *gin.Context) {
	user, err := h.users.FindByIDOrUsername(c.Param("idOrUsername"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}

	var req struct {
		GroupID uint `json:"group_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	old := user.GroupID
	user.GroupID = req.GroupID

	err = h.pipe.Update(pipeline.UpdateRequest{
		Kind:      model.KindUser,
		Entity:    user,
		Changes:   []perm.Change{{Field: "group", Old: old, New: req.GroupID}},
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "操作失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, h.userView(c, user))
}

// PatchPassword 修改本人密码。
func (h *UserHandler) PatchPassword(c *gin.Context) {
	var req struct {
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	r := middleware.GetRequester(c)
	if err := h.users.PatchPassword(r.ID, req.NewPassword, req.ConfirmPassword); err != nil {
		httpx.WriteServiceError(c, err, "修改密码失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "密码已更新"})
}

// SendActiveEmail 请求发送激活邮件。
func (h *UserHandler) SendActiveEmail(c *gin.Context) {
	r := middleware.GetRequester(c)
	if err := h.users.SendActiveEmail(r.ID); err != nil {
		httpx.WriteServiceError(c, err, "发送失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "激活邮件已发送"})
}

// VerifyEmail 用令牌激活账号。
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	state, err := h.users.ActivateByToken(c.Param("token"))
	if err != nil {
		httpx.WriteServiceError(c, err, "激活失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// ForgotPassword 请求密码重置邮件。无论邮箱是否注册均返回成功。
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}
	if err := h.users.SendResetPasswordEmail(req.Email); err != nil {
		httpx.WriteServiceError(c, err, "发送失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "如果该邮箱已注册，重置邮件已发送"})
}

// ResetPassword 用重置令牌设置新密码。
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}
	if err := h.users.ResetPassword(req.Token, req.NewPassword); err != nil {
		httpx.WriteServiceError(c, err, "重置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "密码已重置，请重新登录"})
}
