package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/service"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// GuideHandler handles care guide HTTP requests (public side)
type GuideHandler struct {
	service service.GuideService
}

// NewGuideHandler creates a new GuideHandler
func NewGuideHandler(service service.GuideService) *GuideHandler {
	return &GuideHandler{service: service}
}

// List handles GET /guides
// @Summary 养宠指南列表
// @Tags guides
// @Produce json
// @Param category query string true "分类 dog|cat"
// @Success 200 {object} common.APIResponse{data=[]domain.GuideListItem}
// @Router /guides [get]
func (h *GuideHandler) List(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "缺少分类参数", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	guides, err := h.service.ListPublished(ctx, category)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取指南失败", err)
		return
	}

	common.SuccessResponse(c, guides, nil)
}

// Counts handles GET /guides/counts
// @Summary 各分类指南数量
// @Tags guides
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /guides/counts [get]
func (h *GuideHandler) Counts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	counts, err := h.service.CategoryCounts(ctx)
	if err != nil {
		// The landing page tolerates missing counts; zeroes beat a 500.
		pkglogger.GetLogger().Warn().Err(err).Msg("guide category counts unavailable, returning empty map")
		common.SuccessResponse(c, map[string]int64{}, nil)
		return
	}

	common.SuccessResponse(c, counts, nil)
}

// Get handles GET /guides/:id
// @Summary 指南详情
// @Tags guides
// @Produce json
// @Param id path int true "指南ID"
// @Success 200 {object} common.APIResponse{data=domain.Guide}
// @Router /guides/{id} [get]
func (h *GuideHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "ID格式不正确", err)
		return
	}

	guide, err := h.service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "指南不存在", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "获取指南失败", err)
		return
	}

	// Drafts are reachable only through the admin console.
	if guide.Status != domain.GuideStatusPublished {
		common.ErrorResponse(c, http.StatusNotFound, "指南不存在", nil)
		return
	}

	common.SuccessResponse(c, guide, nil)
}
