package handler

import (
	"net/http"

	"bicarb-server/internal/model"

	"github.com/gin-gonic/gin"
)

// Preview markdown 预览：按主题/楼层口味渲染并替换提及链接，
// 不落库也不产生通知。
func (h *PreviewHandler) Preview(c *gin.Context) {
	var req struct {
		Body      string `json:"body" binding:"required"`
		TopicBody bool   `json:"topic_body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	var cooked string
	if req.TopicBody {
		cooked = h.render.RenderTopic(req.Body)
	} else {
		cooked = h.render.RenderPost(req.Body)
	}

	post := &model.Post{Cooked: cooked}
	if err := h.posts.RewriteMentions(post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "渲染失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"body": post.Cooked, "topic_body": req.TopicBody})
}
