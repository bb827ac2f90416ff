package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
	chatService "github.com/zhouzirui/time-guide/backend/internal/service/chat"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Guide 是 WebSocket 通道使用的对话能力。
type Guide interface {
	Respond(ctx context.Context, sessionID, message string, hooks *ai.Hooks) (ai.Reply, error)
	Locate(state chat.TravelState) (string, bool)
}

// Handler WebSocket聊天处理器
type Handler struct {
	guide    Guide
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(guide Guide) *Handler {
	return &Handler{
		guide: guide,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ReplyData 是 reply 消息的数据部分。
type ReplyData struct {
	Output   string           `json:"output"`
	Travel   chat.TravelState `json:"travel"`
	Location string           `json:"location,omitempty"`
}

// conn serialises writes from the read loop and the ping loop.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msg.Type, err)
	}
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *conn) sendError(sessionID, message string) {
	c.send(outgoingMessage{Type: "error", SessionID: sessionID, Data: map[string]string{"message": message}})
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.guide == nil {
		http.Error(w, "ai unavailable", http.StatusServiceUnavailable)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	c := &conn{ws: ws}
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		sessionID = chatService.NewSessionID()
	}
	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go h.pingLoop(ctx, c)

	c.send(outgoingMessage{Type: "connected", SessionID: sessionID})

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		if id := strings.TrimSpace(msg.SessionID); id != "" {
			sessionID = id
		}
		sessionID = h.handleMessage(ctx, c, sessionID, &msg)
	}
}

// handleMessage answers one inbound frame and returns the session id to use
// for the next one.
func (h *Handler) handleMessage(ctx context.Context, c *conn, sessionID string, msg *inboundMessage) string {
	switch msg.Type {
	case "text":
	case "ping":
		c.send(outgoingMessage{Type: "pong", SessionID: sessionID})
		return sessionID
	default:
		c.sendError(sessionID, "unsupported message type: "+msg.Type)
		return sessionID
	}

	var text TextMessage
	if err := json.Unmarshal(msg.Data, &text); err != nil {
		c.sendError(sessionID, "invalid text payload")
		return sessionID
	}
	if strings.TrimSpace(text.Text) == "" {
		c.sendError(sessionID, ai.ErrMessageRequired.Error())
		return sessionID
	}

	reply, err := h.guide.Respond(ctx, sessionID, text.Text, nil)
	if err != nil {
		log.Printf("[websocket] session=%s turn failed: %v", sessionID, err)
		c.sendError(sessionID, "internal_error")
		return sessionID
	}

	data := ReplyData{Output: reply.Output, Travel: reply.Travel}
	if name, ok := h.guide.Locate(reply.Travel); ok {
		data.Location = name
	}
	c.send(outgoingMessage{Type: "reply", SessionID: reply.SessionID, Data: data})
	return reply.SessionID
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
