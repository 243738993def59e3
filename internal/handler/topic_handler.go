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

// Create 发主题：title + body + 单个分类。
func (h *TopicHandler) Create(c *gin.Context) {
	var req struct {
		Title      string `json:"title" binding:"required"`
		Body       string `json:"body" binding:"required"`
		CategoryID uint   `json:"category_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	topic := &model.Topic{
		Title:      req.Title,
		Body:       req.Body,
		Categories: []model.Category{{ID: req.CategoryID}},
	}
	err := h.pipe.Create(pipeline.CreateRequest{
		Kind:      model.KindTopic,
		Entity:    topic,
		Fields:    []string{consts.FieldTitle, consts.FieldBody, consts.FieldCategories},
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "发帖失败，请稍后重试")
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// List 主题列表；读权限编译为查询谓词，匿名看不到已删主题。
func (h *TopicHandler) List(c *gin.Context) {
	r := middleware.GetRequester(c)
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	opts := repo.ListOptions{
		Scope:     h.pipe.Policy().ReadScope(model.KindTopic, r),
		Sort:      "pinned DESC, last_reply_at DESC",
		Offset:    offset,
		Limit:     limit,
		WithTotal: true,
	}
	if categoryID, err := strconv.ParseUint(c.Query("category"), 10, 64); err == nil {
		id := uint(categoryID)
		opts.Filter = func(tx *gorm.DB) *gorm.DB {
			sub := tx.Session(&gorm.Session{NewDB: true}).
				Table("topic_categories").Select("topic_id").Where("category_id = ?", id)
			return tx.Where("topics.id IN (?)", sub)
		}
	}

	topics, total, err := h.topicStore.List(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": topics, "total": total})
}

// Get 单主题；对被删主题按同一套读权限表达式判定。
func (h *TopicHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的主题 ID"})
		return
	}
	r := middleware.GetRequester(c)
	topic, err := h.topicStore.FindVisibleByID(uint(id), h.pipe.Policy().ReadScope(model.KindTopic, r))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "主题不存在"})
		return
	}
	c.JSON(http.StatusOK, topic)
}

// Patch 更新主题字段：title / category / locked / delete / pinned / feature。
func (h *TopicHandler) Patch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的主题 ID"})
		return
	}
	topic, err := h.topicStore.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "主题不存在"})
		return
	}

	var req struct {
		Title      *string `json:"title"`
		CategoryID *uint   `json:"category_id"`
		Locked     *bool   `json:"locked"`
		Delete     *bool   `json:"delete"`
		Pinned     *bool   `json:"pinned"`
		Feature    *bool   `json:"feature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	var changes []perm.Change
	if req.Title != nil {
		changes = append(changes, perm.Change{Field: consts.FieldTitle, Old: topic.Title, New: *req.Title})
		topic.Title = *req.Title
	}
	if req.CategoryID != nil {
		// 选定单个分类，祖先闭包在落库前自动展开
		changes = append(changes, perm.Change{Field: consts.FieldCategories, Old: topic.Categories, New: *req.CategoryID})
	}
	if req.Locked != nil {
		changes = append(changes, perm.Change{Field: consts.FieldLocked, Old: topic.Locked, New: *req.Locked})
		topic.Locked = *req.Locked
	}
	if req.Delete != nil {
		changes = append(changes, perm.Change{Field: consts.FieldDelete, Old: topic.Delete, New: *req.Delete})
		topic.Delete = *req.Delete
	}
	if req.Pinned != nil {
		changes = append(changes, perm.Change{Field: consts.FieldPinned, Old: topic.Pinned, New: *req.Pinned})
		topic.Pinned = *req.Pinned
	}
	if req.Feature != nil {
		changes = append(changes, perm.Change{Field: consts.FieldFeature, Old: topic.Feature, New: *req.Feature})
		topic.Feature = *req.Feature
	}

	err = h.pipe.Update(pipeline.UpdateRequest{
		Kind:      model.KindTopic,
		Entity:    topic,
		Changes:   changes,
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "更新失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, topic)
}
