package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /auth/register
// @Summary 注册账号
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterRequest true "注册信息"
// @Success 200 {object} common.APIResponse{data=service.LoginResponse}
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}

	result, err := h.service.Register(&req)
	if err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			common.ErrorResponse(c, http.StatusConflict, "该邮箱已被注册", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "注册失败", err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Login handles POST /auth/login
// @Summary 登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "登录信息"
// @Success 200 {object} common.APIResponse{data=service.LoginResponse}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}

	result, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			common.ErrorResponse(c, http.StatusUnauthorized, "邮箱或密码错误", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "登录失败", err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Me handles GET /auth/me
// @Summary 当前用户
// @Tags auth
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.ProfileResponse}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	profile, err := h.service.CurrentUser(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取用户信息失败", err)
		return
	}

	common.SuccessResponse(c, profile, nil)
}
