package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/00yuyi00/ChongYu/internal/chat"
	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
	"github.com/00yuyi00/ChongYu/internal/ws"
)

// streamWriteWait bounds each snapshot write; a peer that stops reading
// must not wedge the writer goroutine.
const streamWriteWait = 10 * time.Second

// WSHandler handles WebSocket connections
type WSHandler struct {
	hub            *ws.Hub
	sessions       service.SessionService
	messages       service.MessageService
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, sessions service.SessionService, messages service.MessageService, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		sessions:       sessions,
		messages:       messages,
		allowedOrigins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// parseOrigins parses comma-separated origins string
func parseOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // Same-origin requests don't have Origin header
	}

	// If no allowed origins configured, allow all (development mode)
	if len(h.allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// Connect handles the WebSocket upgrade for the account-wide message feed.
// Browsers cannot set headers on a websocket handshake, so the token
// rides in the query string and is resolved through the bounded session
// lookup rather than the bearer middleware.
// @Summary 私信实时推送 WebSocket
// @Tags messages
// @Router /ws/messages [get]
func (h *WSHandler) Connect(c *gin.Context) {
	session := h.sessions.Resolve(c.Request.Context(), c.Query("token"))
	if session.State != service.SessionAuthenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	middleware.WSConnectionOpened()

	client := ws.NewClient(h.hub, conn, session.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump()
		middleware.WSConnectionClosed()
	}()
}

// ConversationStream streams one open conversation: an initial snapshot of
// the history, then a fresh snapshot after every accepted append. The
// subscription is seeded before it goes live; a message racing the history
// fetch may therefore appear twice in later snapshots, which the client
// renders as-is.
// @Summary 单个会话实时流 WebSocket
// @Tags messages
// @Router /ws/conversations/{counterpartID} [get]
func (h *WSHandler) ConversationStream(c *gin.Context) {
	session := h.sessions.Resolve(c.Request.Context(), c.Query("token"))
	if session.State != service.SessionAuthenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
		return
	}

	counterpartID := c.Param("counterpartID")
	if counterpartID == "" || counterpartID == session.UserID {
		common.ErrorResponse(c, http.StatusBadRequest, "无效的会话对象", nil)
		return
	}

	history, err := h.messages.GetConversation(session.UserID, counterpartID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "获取历史消息失败", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	middleware.WSConnectionOpened()

	sub := chat.NewSubscriber(h.hub, session.UserID, counterpartID)
	sub.SeedHistory(history)

	notify := make(chan struct{}, 1)
	sub.OnAppend(func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	sub.Open()

	// Reader exists only to observe the peer closing the socket
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			sub.Close()
			conn.Close()
			middleware.WSConnectionClosed()
		}()

		writeSnapshot := func() bool {
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait)) //nolint:errcheck
			return conn.WriteJSON(gin.H{"type": "conversation", "payload": sub.Log()}) == nil
		}
		if !writeSnapshot() {
			return
		}
		for {
			select {
			case <-notify:
				if !writeSnapshot() {
					return
				}
			case <-readerDone:
				return
			}
		}
	}()
}
