package handler

import (
	"net/http"
	"strconv"

	"bicarb-server/internal/common/httpx"
	"bicarb-server/internal/consts"
	"bicarb-server/internal/middleware"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	repo "bicarb-server/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Create 回帖。
func (h *PostHandler) Create(c *gin.Context) {
	var req struct {
		TopicID uint   `json:"topic_id" binding:"required"`
		Raw     string `json:"raw" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	post := &model.Post{TopicID: req.TopicID, Raw: req.Raw}
	err := h.pipe.Create(pipeline.CreateRequest{
		Kind:      model.KindPost,
		Entity:    post,
		Fields:    []string{consts.FieldRaw, "topic"},
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "回帖失败，请稍后重试")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ListByTopic 主题内楼层列表，读权限谓词下推。
func (h *PostHandler) ListByTopic(c *gin.Context) {
	topicID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的主题 ID"})
		return
	}
	r := middleware.GetRequester(c)
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	id := uint(topicID)
	posts, total, err := h.postStore.List(repo.ListOptions{
		Scope: h.pipe.Policy().ReadScope(model.KindPost, r),
		Filter: func(tx *gorm.DB) *gorm.DB {
			return tx.Where("posts.topic_id = ?", id)
		},
		Sort:      "idx ASC",
		Offset:    offset,
		Limit:     limit,
		WithTotal: true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": posts, "total": total})
}

// Patch 编辑楼层：raw（正文）与 delete（删除/恢复）。
func (h *PostHandler) Patch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的帖子 ID"})
		return
	}
	post, err := h.postStore.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "帖子不存在"})
		return
	}

	var req struct {
		Raw    *string `json:"raw"`
		Delete *bool   `json:"delete"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	var changes []perm.Change
	if req.Raw != nil {
		changes = append(changes, perm.Change{Field: consts.FieldRaw, Old: post.Raw, New: *req.Raw})
		post.Raw = *req.Raw
	}
	if req.Delete != nil {
		changes = append(changes, perm.Change{Field: consts.FieldDelete, Old: post.Delete, New: *req.Delete})
		post.Delete = *req.Delete
	}

	err = h.pipe.Update(pipeline.UpdateRequest{
		Kind:      model.KindPost,
		Entity:    post,
		Changes:   changes,
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "更新失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, post)
}
