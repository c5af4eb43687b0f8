package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
	"github.com/zhouzirui/pocket-coach/internal/model/persona"
	chatservice "github.com/zhouzirui/pocket-coach/internal/service/chat"
	"github.com/zhouzirui/pocket-coach/internal/service/turn"
)

var (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

// WebSocketHandler WebSocket对话处理器
type WebSocketHandler struct {
	chatSvc        *chatservice.Service
	runner         *turn.Runner
	defaultPersona persona.Persona
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatservice.Service, runner *turn.Runner, defaultPersona persona.Persona) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc:        chatSvc,
		runner:         runner,
		defaultPersona: defaultPersona,
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
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

// StarterMessage 选择快速开始问题
type StarterMessage struct {
	Index int `json:"index"`
}

// ConfigMessage 配置消息
type ConfigMessage struct {
	Persona string `json:"persona"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, err := persona.Parse(r.URL.Query().Get("persona"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("persona") == "" {
		p = h.defaultPersona
	}
	session := chat.NewSession(p)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection persona=%s", session.Persona)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.sendConnected(ctx, conn, session)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		// Pongs are only handled while reading, so a long turn must not run
		// against the idle deadline.
		conn.SetReadDeadline(time.Time{})
		h.handleMessage(ctx, conn, session, &msg)
		conn.SetReadDeadline(time.Now().Add(readTimeout))
	}
}

func (h *WebSocketHandler) sendConnected(ctx context.Context, conn *websocket.Conn, session *chat.Session) {
	messages, err := h.chatSvc.List(ctx)
	if err != nil {
		h.sendError(conn, "failed to load conversation")
		return
	}

	data := map[string]any{
		"type":     "connected",
		"persona":  session.Persona,
		"messages": messages,
	}
	if session.ShowStarters(len(messages) == 0) {
		data["starters"] = chat.Starters()
	}
	h.sendInfo(conn, data)
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, session *chat.Session, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		var text TextMessage
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			h.sendError(conn, "invalid text payload")
			return
		}
		h.runTurn(conn, func() (turn.Turn, error) {
			return h.runner.Run(ctx, text.Text, session.Persona)
		})
	case "starter":
		var starter StarterMessage
		if err := json.Unmarshal(msg.Data, &starter); err != nil {
			h.sendError(conn, "invalid starter payload")
			return
		}
		if h.runTurn(conn, func() (turn.Turn, error) {
			return h.runner.Starter(ctx, starter.Index, session.Persona)
		}) {
			session.StarterShown = true
		}
	case "config":
		h.handleConfigMessage(conn, session, msg.Data)
	case "clear":
		if err := h.chatSvc.Clear(ctx); err != nil {
			log.Printf("[websocket] clear failed: %v", err)
			h.sendError(conn, "failed to clear conversation")
			return
		}
		session.Reset()
		h.sendInfo(conn, map[string]any{"type": "cleared", "starters": chat.Starters()})
	case "history":
		messages, err := h.chatSvc.List(ctx)
		if err != nil {
			h.sendError(conn, "failed to load conversation")
			return
		}
		h.sendInfo(conn, map[string]any{"type": "history", "messages": messages})
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

// runTurn executes one exchange and reports whether it was stored.
func (h *WebSocketHandler) runTurn(conn *websocket.Conn, run func() (turn.Turn, error)) bool {
	result, err := run()
	switch {
	case errors.Is(err, turn.ErrEmptyMessage), errors.Is(err, turn.ErrUnknownStarter):
		h.sendError(conn, err.Error())
		return false
	case err != nil:
		log.Printf("[websocket] turn failed: %v", err)
		h.sendError(conn, "failed to save conversation")
		return false
	}

	h.sendInfo(conn, map[string]any{
		"type": "turn",
		"user": result.User,
		"bot":  result.Bot,
		"ok":   result.Reply.OK(),
	})
	return true
}

func (h *WebSocketHandler) handleConfigMessage(conn *websocket.Conn, session *chat.Session, raw json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		h.sendError(conn, "invalid config payload")
		return
	}

	if err := h.applyConfig(session, cfg); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	log.Printf("[websocket] config applied persona=%s", session.Persona)
	h.sendInfo(conn, map[string]any{
		"type":    "config",
		"persona": session.Persona,
	})
}

func (h *WebSocketHandler) applyConfig(session *chat.Session, cfg ConfigMessage) error {
	if cfg.Persona == "" {
		return nil
	}
	p, err := persona.Parse(cfg.Persona)
	if err != nil {
		return fmt.Errorf("invalid persona: %w", err)
	}
	session.Persona = p
	return nil
}

func (h *WebSocketHandler) sendInfo(conn *websocket.Conn, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
