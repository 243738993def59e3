package handler

import (
	"net/http"
	"strconv"

	"bicarb-server/internal/common/httpx"
	"bicarb-server/internal/consts"
	"bicarb-server/internal/middleware"
	"bicarb-server/internal/model"
	"bicarb-server/internal/pipeline"
	repo "bicarb-server/internal/repository"

	"github.com/gin-gonic/gin"
)

// Create 举报帖子。
func (h *ReportHandler) Create(c *gin.Context) {
	var req struct {
		PostID uint   `json:"post_id" binding:"required"`
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	report := &model.Report{PostID: req.PostID, Reason: req.Reason}
	err := h.pipe.Create(pipeline.CreateRequest{
		Kind:      model.KindReport,
		Entity:    report,
		Fields:    []string{"post", "reason"},
		Requester: middleware.GetRequester(c),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		httpx.WriteServiceError(c, err, "举报失败，请稍后重试")
		return
	}
	c.JSON(http.StatusCreated, report)
}

// List 举报列表（report.manage 权限，经读权限表达式判定）。
func (h *ReportHandler) List(c *gin.Context) {
	r := middleware.GetRequester(c)
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	reports, total, err := h.reportStore.List(repo.ListOptions{
		Scope:     h.pipe.Policy().ReadScope(model.KindReport, r),
		Sort:      "id DESC",
		Offset:    offset,
		Limit:     limit,
		WithTotal: true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reports, "total": total})
}

// HandleByPost 一键处理某帖子的全部未处理举报（report.manage 权限）。
func (h *ReportHandler) HandleByPost(c *gin.Context) {
	r := middleware.GetRequester(c)
	if !r.HasPermission(consts.PermReportManage) {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权限"})
		return
	}

	postID, err := strconv.ParseUint(c.Param("postId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的帖子 ID"})
		return
	}
	if err := h.reports.HandleByPostID(uint(postID)); err != nil {
		httpx.WriteServiceError(c, err, "处理失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已处理"})
}
