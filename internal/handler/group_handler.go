package handler

import (
	"net/http"
	"strconv"
	"strings"

	"bicarb-server/internal/common/httpx"
	"bicarb-server/internal/middleware"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"

	"github.com/gin-gonic/gin"
)

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// Create 新建用户组（group.all 权限）。
func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		Color       string   `json:"color"`
		Icon        string   `json:"icon"`
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	group := &model.Group{
		Name:        req.Name,
		Color:       req.Color,
		Icon:        req.Icon,
		Permissions: strings.Join(req.Permissions, ","),
	}
	err := h.pipe.Create(pipeline.CreateRequest{
		Kind:      model.KindGroup,
		Entity:    group,
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "创建用户组失败")
		return
	}
	c.JSON(http.StatusCreated, group)
}

// Patch 更新组属性与权限集（group.all 权限）。
func (h *GroupHandler) Patch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的组 ID"})
		return
	}
	group, err := h.groups.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户组不存在"})
		return
	}

	var req struct {
		Name        *string   `json:"name"`
		Color       *string   `json:"color"`
		Icon        *string   `json:"icon"`
		Permissions *[]string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	var changes []perm.Change
	if req.Name != nil {
		changes = append(changes, perm.Change{Field: "name", Old: group.Name, New: *req.Name})
		group.Name = *req.Name
	}
	if req.Color != nil {
		changes = append(changes, perm.Change{Field: "color", Old: group.Color, New: *req.Color})
		group.Color = *req.Color
	}
	if req.Icon != nil {
		changes = append(changes, perm.Change{Field: "icon", Old: group.Icon, New: *req.Icon})
		group.Icon = *req.Icon
	}
	if req.Permissions != nil {
		joined := strings.Join(*req.Permissions, ",")
		changes = append(changes, perm.Change{Field: "permissions", Old: group.Permissions, New: joined})
		group.Permissions = joined
	}

	err = h.pipe.Update(pipeline.UpdateRequest{
		Kind:      model.KindGroup,
		Entity:    group,
		Changes:   changes,
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "更新用户组失败")
		return
	}
	c.JSON(http.StatusOK, group)
}

// Delete 删除用户组；预定义组拒绝，成员迁回 3 号组。
func (h *GroupHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的组 ID"})
		return
	}
	group, err := h.groups.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户组不存在"})
		return
	}

	err = h.pipe.Delete(pipeline.DeleteRequest{
		Kind:      model.KindGroup,
		Entity:    group,
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "删除用户组失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}
