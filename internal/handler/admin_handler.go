package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// AdminHandler handles the back-office console endpoints. All routes
// are mounted behind JWTAuth + RequireAdmin.
type AdminHandler struct {
	admin    service.AdminService
	feedback service.FeedbackService
	guide    service.GuideService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin service.AdminService, feedback service.FeedbackService, guide service.GuideService) *AdminHandler {
	return &AdminHandler{admin: admin, feedback: feedback, guide: guide}
}

// Stats handles GET /admin/stats
// @Summary 后台数据总览
// @Tags admin
// @Produce json
// @Success 200 {object} common.APIResponse{data=service.DashboardStats}
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats()
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取统计失败", err)
		return
	}

	common.SuccessResponse(c, stats, nil)
}

// ListUsers handles GET /admin/users
// @Summary 用户列表
// @Tags admin
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} common.APIResponse{data=[]domain.ProfileResponse}
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, meta, err := h.admin.ListUsers(page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取用户列表失败", err)
		return
	}

	common.SuccessResponse(c, users, meta)
}

// UserPosts handles GET /admin/users/:id/posts
// @Summary 某用户的发布记录
// @Tags admin
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} common.APIResponse{data=[]domain.PostResponse}
// @Router /admin/users/{id}/posts [get]
func (h *AdminHandler) UserPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	posts, meta, err := h.admin.ListPostsByUser(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取发布记录失败", err)
		return
	}

	common.SuccessResponse(c, posts, meta)
}

// TakeDownPost handles POST /admin/posts/:id/takedown
// @Summary 下架信息
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "信息ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/posts/{id}/takedown [post]
func (h *AdminHandler) TakeDownPost(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	postID := c.Param("id")
	if err := h.admin.TakeDownPost(c.Request.Context(), postID); err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "信息不存在", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "下架失败", err)
		return
	}

	pkglogger.GetLogger().Info().
		Str("post_id", postID).
		Str("admin_id", middleware.GetUserID(c)).
		Str("reason", req.Reason).
		Msg("post taken down")

	common.SuccessResponse(c, gin.H{"status": domain.PostStatusTakenDown}, nil)
}

// RestorePost handles POST /admin/posts/:id/restore
// @Summary 恢复已下架信息
// @Tags admin
// @Produce json
// @Param id path string true "信息ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/posts/{id}/restore [post]
func (h *AdminHandler) RestorePost(c *gin.Context) {
	if err := h.admin.RestorePost(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, common.ErrPostNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "信息不存在", err)
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, "该信息未被下架", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "恢复失败", err)
		}
		return
	}

	common.SuccessResponse(c, gin.H{"status": domain.PostStatusLive}, nil)
}

// ListFeedback handles GET /admin/feedback
// @Summary 反馈列表
// @Tags admin
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} common.APIResponse{data=[]domain.Feedback}
// @Router /admin/feedback [get]
func (h *AdminHandler) ListFeedback(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	feedbacks, meta, err := h.feedback.ListAll(page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取反馈失败", err)
		return
	}

	common.SuccessResponse(c, feedbacks, meta)
}

// ResolveFeedback handles POST /admin/feedback/:id/resolve
// @Summary 标记反馈已处理
// @Tags admin
// @Produce json
// @Param id path int true "反馈ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/feedback/{id}/resolve [post]
func (h *AdminHandler) ResolveFeedback(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "ID格式不正确", err)
		return
	}

	if err := h.feedback.MarkResolved(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "反馈不存在", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "操作失败", err)
		return
	}

	common.SuccessResponse(c, gin.H{"status": domain.FeedbackStatusResolved}, nil)
}

// ListGuides handles GET /admin/guides
// @Summary 指南列表（含草稿）
// @Tags admin
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.Guide}
// @Router /admin/guides [get]
func (h *AdminHandler) ListGuides(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	guides, meta, err := h.guide.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取指南失败", err)
		return
	}

	common.SuccessResponse(c, guides, meta)
}

// CreateGuide handles POST /admin/guides
// @Summary 新建指南
// @Tags admin
// @Accept json
// @Produce json
// @Param request body domain.SaveGuideRequest true "指南内容"
// @Success 200 {object} common.APIResponse{data=domain.Guide}
// @Router /admin/guides [post]
func (h *AdminHandler) CreateGuide(c *gin.Context) {
	var req domain.SaveGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}

	guide, err := h.guide.Create(c.Request.Context(), &req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "创建失败", err)
		return
	}

	common.SuccessResponse(c, guide, nil)
}

// UpdateGuide handles PUT /admin/guides/:id
// @Summary 修改指南
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "指南ID"
// @Param request body domain.SaveGuideRequest true "指南内容"
// @Success 200 {object} common.APIResponse
// @Router /admin/guides/{id} [put]
func (h *AdminHandler) UpdateGuide(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "ID格式不正确", err)
		return
	}

	var req domain.SaveGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}

	if err := h.guide.Update(c.Request.Context(), uint(id), &req); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "指南不存在", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "修改失败", err)
		return
	}

	common.SuccessResponse(c, nil, nil)
}
