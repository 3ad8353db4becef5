package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
)

// FeedbackHandler handles user feedback HTTP requests
type FeedbackHandler struct {
	service service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(service service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Submit handles POST /feedback
// @Summary 提交意见反馈
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body domain.SubmitFeedbackRequest true "反馈内容"
// @Success 200 {object} common.APIResponse{data=domain.Feedback}
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	var req domain.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请填写反馈内容", err)
		return
	}

	feedback, err := h.service.Submit(userID, &req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "提交失败", err)
		return
	}

	common.SuccessResponse(c, feedback, nil)
}

// Mine handles GET /feedback/mine
// @Summary 我的反馈记录
// @Tags feedback
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.Feedback}
// @Router /feedback/mine [get]
func (h *FeedbackHandler) Mine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	feedbacks, err := h.service.ListByUser(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取反馈记录失败", err)
		return
	}

	common.SuccessResponse(c, feedbacks, nil)
}
