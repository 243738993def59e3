package handler

import (
	"net/http"
	"strconv"
	"time"

	"bicarb-server/internal/common/httpx"
	"bicarb-server/internal/consts"
	"bicarb-server/internal/middleware"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	repo "bicarb-server/internal/repository"

	"github.com/gin-gonic/gin"
)

// List 本人通知，读权限过滤器保证只见 to = 自己的记录。
func (h *NotificationHandler) List(c *gin.Context) {
	r := middleware.GetRequester(c)
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.notificationStore.List(repo.ListOptions{
		Scope:     h.pipe.Policy().ReadScope(model.KindNotification, r),
		Sort:      "id DESC",
		Offset:    offset,
		Limit:     limit,
		WithTotal: true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications, "total": total})
}

// UnreadCount 未读数。
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	r := middleware.GetRequester(c)
	count, err := h.notificationStore.CountUnread(r.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead 单条已读；readAt 只有收件人可改，且只能从未读置为已读。
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的通知 ID"})
		return
	}
	notification, err := h.notificationStore.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "通知不存在"})
		return
	}
	if notification.ReadAt != nil {
		c.JSON(http.StatusOK, notification)
		return
	}

	now := time.Now()
	old := notification.ReadAt
	notification.ReadAt = &now

	err = h.pipe.Update(pipeline.UpdateRequest{
		Kind:      model.KindNotification,
		Entity:    notification,
		Changes:   []perm.Change{{Field: consts.FieldReadAt, Old: old, New: &now}},
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "操作失败")
		return
	}
	c.JSON(http.StatusOK, notification)
}

// MarkAllRead 全部已读。
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	r := middleware.GetRequester(c)
	if err := h.notificationStore.MarkAllRead(r.ID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "操作失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已全部标记为已读"})
}
