package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Query 关键词搜索帖子。
func (h *SearchHandler) Query(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少查询关键词"})
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	docs, total, err := h.search.Query(keyword, offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "搜索失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs, "total": total})
}

// Relate 相近帖子：以指定帖子的索引文档为样本检索。
func (h *SearchHandler) Relate(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("postId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的帖子 ID"})
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	docs, total, err := h.search.MoreLikeThis(uint(postID), offset, limit)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "帖子未被索引"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs, "total": total})
}

// SafeRebuild 异步增量重建；已有重建在跑时返回 409。
func (h *SearchHandler) SafeRebuild(c *gin.Context) {
	if _, started := h.search.SafeRebuild(); !started {
		c.JSON(http.StatusConflict, gin.H{"error": "索引重建已在进行中"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "重建已开始"})
}

// Rebuild 异步全量重建（先清空索引）。
func (h *SearchHandler) Rebuild(c *gin.Context) {
	if _, started := h.search.Rebuild(); !started {
		c.JSON(http.StatusConflict, gin.H{"error": "索引重建已在进行中"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "重建已开始"})
}

// Indexing 当前是否在重建。
func (h *SearchHandler) Indexing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"indexing": h.search.IsIndexing()})
}
