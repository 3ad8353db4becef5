package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
)

// listTimeout bounds public listing reads so a hung backing store
// surfaces as an error instead of an indefinite hang.
const listTimeout = 5 * time.Second

// PostHandler handles pet listing HTTP requests
type PostHandler struct {
	service  service.PostService
	favorite service.FavoriteService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service service.PostService, favorite service.FavoriteService) *PostHandler {
	return &PostHandler{service: service, favorite: favorite}
}

// List handles GET /posts
// @Summary 信息列表
// @Tags posts
// @Produce json
// @Param post_type query string false "类型 seek|found|adopt"
// @Param pet_type query string false "宠物 dog|cat"
// @Param keyword query string false "关键词"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} common.APIResponse{data=[]domain.PostResponse}
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	var q domain.ListPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "查询参数不正确", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	posts, meta, err := h.service.List(ctx, &q)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取列表失败", err)
		return
	}

	common.SuccessResponse(c, posts, meta)
}

// Get handles GET /posts/:id
// @Summary 信息详情
// @Tags posts
// @Produce json
// @Param id path string true "信息ID"
// @Success 200 {object} common.APIResponse{data=domain.PostResponse}
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "信息不存在", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "获取详情失败", err)
		return
	}

	// Favorite flag only when signed in; anonymous viewers get false.
	favorited := false
	if userID := middleware.GetUserID(c); userID != "" && h.favorite != nil {
		favorited, _ = h.favorite.IsFavorited(userID, post.ID)
	}

	common.SuccessResponse(c, gin.H{"post": post, "is_favorited": favorited}, nil)
}

// MyPosts handles GET /posts/mine
// @Summary 我的发布
// @Tags posts
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} common.APIResponse{data=[]domain.PostResponse}
// @Router /posts/mine [get]
func (h *PostHandler) MyPosts(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	posts, meta, err := h.service.GetByUser(ctx, userID, page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取我的发布失败", err)
		return
	}

	common.SuccessResponse(c, posts, meta)
}

// Resolve handles POST /posts/:id/resolve
// @Summary 标记结案
// @Tags posts
// @Produce json
// @Param id path string true "信息ID"
// @Success 200 {object} common.APIResponse
// @Router /posts/{id}/resolve [post]
func (h *PostHandler) Resolve(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	if err := h.service.MarkResolved(c.Param("id"), userID); err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "信息不存在或无权操作", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "操作失败", err)
		return
	}

	common.SuccessResponse(c, gin.H{"status": domain.PostStatusResolved}, nil)
}
