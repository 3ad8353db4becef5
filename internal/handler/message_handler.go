package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
)

// MessageHandler handles private message HTTP requests
type MessageHandler struct {
	service service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Send handles POST /messages
// @Summary 发送私信
// @Tags messages
// @Accept json
// @Produce json
// @Param request body domain.SendMessageRequest true "私信内容"
// @Success 200 {object} common.APIResponse{data=domain.MessageResponse}
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}

	msg, err := h.service.Send(userID, &req)
	if err != nil {
		if errors.Is(err, common.ErrMessageToSelf) {
			common.ErrorResponse(c, http.StatusBadRequest, "不能给自己发私信", err)
			return
		}
		if errors.Is(err, common.ErrBlockedScamLink) {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "发送失败", err)
		return
	}

	common.SuccessResponse(c, msg, nil)
}

// Conversations handles GET /messages/conversations
// @Summary 会话列表
// @Tags messages
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ConversationPreview}
// @Router /messages/conversations [get]
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	previews, err := h.service.ListConversations(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取会话列表失败", err)
		return
	}

	common.SuccessResponse(c, previews, nil)
}

// History handles GET /messages/with/:userID
// @Summary 单个会话消息记录
// @Tags messages
// @Produce json
// @Param userID path string true "对方用户ID"
// @Success 200 {object} common.APIResponse{data=[]domain.MessageResponse}
// @Router /messages/with/{userID} [get]
func (h *MessageHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	messages, err := h.service.GetConversation(userID, c.Param("userID"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取消息记录失败", err)
		return
	}

	common.SuccessResponse(c, messages, nil)
}
