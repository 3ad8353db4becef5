package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
)

const maxAvatarBytes = 5 << 20

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	service service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get handles GET /profiles/:id
// @Summary 查看用户资料
// @Tags profiles
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} common.APIResponse{data=domain.ProfileResponse}
// @Router /profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取资料失败", err)
		return
	}

	common.SuccessResponse(c, profile, nil)
}

// Update handles PATCH /profiles/me
// @Summary 修改个人资料
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileRequest true "资料字段"
// @Success 200 {object} common.APIResponse{data=domain.ProfileResponse}
// @Router /profiles/me [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}

	profile, err := h.service.Update(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			common.ErrorResponse(c, http.StatusBadRequest, "没有可修改的字段", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "修改失败", err)
		return
	}

	common.SuccessResponse(c, profile, nil)
}

// UploadAvatar handles POST /profiles/me/avatar
// @Summary 上传头像
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "头像图片"
// @Success 200 {object} common.APIResponse{data=domain.ProfileResponse}
// @Router /profiles/me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请选择头像图片", err)
		return
	}
	if fh.Size > maxAvatarBytes {
		common.ErrorResponse(c, http.StatusBadRequest, "头像不能超过5MB", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "读取图片失败", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "读取图片失败", err)
		return
	}

	profile, err := h.service.UpdateAvatar(c.Request.Context(), userID, data, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, common.ErrUploadFailed) {
			common.ErrorResponse(c, http.StatusBadGateway, "头像上传失败，请重试", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "修改头像失败", err)
		return
	}

	common.SuccessResponse(c, profile, nil)
}
