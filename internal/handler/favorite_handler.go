package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
)

// FavoriteHandler handles bookmark HTTP requests
type FavoriteHandler struct {
	service service.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(service service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// Add handles POST /favorites/:postID
// @Summary 收藏
// @Tags favorites
// @Produce json
// @Param postID path string true "信息ID"
// @Success 200 {object} common.APIResponse
// @Router /favorites/{postID} [post]
func (h *FavoriteHandler) Add(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	if err := h.service.Add(userID, c.Param("postID")); err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "信息不存在", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "收藏失败", err)
		return
	}

	common.SuccessResponse(c, nil, nil)
}

// Remove handles DELETE /favorites/:postID
// @Summary 取消收藏
// @Tags favorites
// @Produce json
// @Param postID path string true "信息ID"
// @Success 200 {object} common.APIResponse
// @Router /favorites/{postID} [delete]
func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	if err := h.service.Remove(userID, c.Param("postID")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "未收藏该信息", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "取消收藏失败", err)
		return
	}

	common.SuccessResponse(c, nil, nil)
}

// List handles GET /favorites
// @Summary 我的收藏
// @Tags favorites
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} common.APIResponse{data=[]domain.FavoriteResponse}
// @Router /favorites [get]
func (h *FavoriteHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	favorites, meta, err := h.service.List(ctx, userID, page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取收藏失败", err)
		return
	}

	common.SuccessResponse(c, favorites, meta)
}
