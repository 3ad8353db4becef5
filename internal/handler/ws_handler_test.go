package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/service"
	"github.com/00yuyi00/ChongYu/internal/ws"
)

type stubSessionService struct {
	session *service.Session
}

func (s *stubSessionService) Resolve(ctx context.Context, token string) *service.Session {
	return s.session
}

type stubMessageService struct {
	history []*domain.MessageResponse
}

func (s *stubMessageService) Send(senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	return nil, errors.New("not wired")
}

func (s *stubMessageService) GetConversation(userID, counterpartID string) ([]*domain.MessageResponse, error) {
	return s.history, nil
}

func (s *stubMessageService) ListConversations(userID string) ([]*domain.ConversationPreview, error) {
	return nil, nil
}

type conversationFrame struct {
	Type    string                    `json:"type"`
	Payload []*domain.MessageResponse `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) conversationFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)
	var frame conversationFrame
	assert.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestConversationStream_SnapshotThenLiveAppend(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub(nil)
	go hub.Run()

	authed := &stubSessionService{session: &service.Session{
		State:  service.SessionAuthenticated,
		UserID: "alice",
	}}
	messages := &stubMessageService{history: []*domain.MessageResponse{
		{ID: "m1", SenderID: "bob", ReceiverID: "alice", Content: "在吗"},
	}}
	handler := NewWSHandler(hub, authed, messages, "")

	router := gin.New()
	router.GET("/ws/conversations/:counterpartID", handler.ConversationStream)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/conversations/bob?token=x"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Initial snapshot carries the seeded history.
	first := readFrame(t, conn)
	assert.Equal(t, "conversation", first.Type)
	assert.Len(t, first.Payload, 1)
	assert.Equal(t, "m1", first.Payload[0].ID)

	// A delivered append produces a fresh, larger snapshot.
	hub.PublishMessage(&domain.MessageResponse{
		ID:         "m2",
		SenderID:   "bob",
		ReceiverID: "alice",
		Content:    "看到你发的寻宠帖了",
	})

	second := readFrame(t, conn)
	assert.Len(t, second.Payload, 2)
	assert.Equal(t, "m2", second.Payload[1].ID)
}

func TestConversationStream_RejectsSelfConversation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authed := &stubSessionService{session: &service.Session{
		State:  service.SessionAuthenticated,
		UserID: "alice",
	}}
	handler := NewWSHandler(ws.NewHub(nil), authed, &stubMessageService{}, "")

	router := gin.New()
	router.GET("/ws/conversations/:counterpartID", handler.ConversationStream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/conversations/alice?token=x", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationStream_UnauthenticatedRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	anon := &stubSessionService{session: &service.Session{State: service.SessionAnonymous}}
	handler := NewWSHandler(ws.NewHub(nil), anon, &stubMessageService{}, "")

	router := gin.New()
	router.GET("/ws/conversations/:counterpartID", handler.ConversationStream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/conversations/bob?token=bad", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
