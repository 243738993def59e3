package handler

import (
	"net/http"
	"strconv"

	"bicarb-server/internal/common/httpx"
	"bicarb-server/internal/consts"
	"bicarb-server/internal/middleware"
	"bicarb-server/internal/model"
	"bicarb-server/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// List 全部分类（树由客户端按 parent_id 组装）。
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryStore.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// Create 新建分类（category.all 权限）。
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		ParentID    *uint  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	err := h.pipe.Create(pipeline.CreateRequest{
		Kind:      model.KindCategory,
		Entity:    category,
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "创建分类失败")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Delete 删除分类；子分类上提，冗余关系清理（category.all 权限）。
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的分类 ID"})
		return
	}
	category, err := h.categoryStore.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "分类不存在"})
		return
	}

	err = h.pipe.Delete(pipeline.DeleteRequest{
		Kind:      model.KindCategory,
		Entity:    category,
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "删除分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

// PatchLocation 移动分类：position、parent_id 至少给一个。
func (h *CategoryHandler) PatchLocation(c *gin.Context) {
	r := middleware.GetRequester(c)
	if !r.HasPermission(consts.PermCategoryAll) {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权限"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的分类 ID"})
		return
	}

	var req struct {
		Position *int  `json:"position"`
		ParentID *uint `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	if err := h.categories.PatchLocation(uint(id), req.Position, req.ParentID); err != nil {
		httpx.WriteServiceError(c, err, "移动分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已移动"})
}
