package chat

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
	"github.com/zhouzirui/pocket-coach/internal/model/persona"
	"github.com/zhouzirui/pocket-coach/internal/service/ai"
	chatService "github.com/zhouzirui/pocket-coach/internal/service/chat"
	"github.com/zhouzirui/pocket-coach/internal/service/turn"
	"github.com/zhouzirui/pocket-coach/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc        *chatService.Service
	aiSvc          *ai.Service
	runner         *turn.Runner
	defaultPersona persona.Persona
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, aiSvc *ai.Service, runner *turn.Runner, defaultPersona persona.Persona) *Handler {
	return &Handler{
		chatSvc:        chatSvc,
		aiSvc:          aiSvc,
		runner:         runner,
		defaultPersona: defaultPersona,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.handleListMessages)
	r.Post("/messages", h.handleAppendMessage)
	r.Delete("/messages", h.handleClearMessages)
	r.Post("/query", h.handleQuery)
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.List(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleAppendMessage 保存消息
func (h *Handler) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Sender string `json:"sender"`
		Body   string `json:"body"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sender := chat.Sender(payload.Sender)
	if !sender.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "sender must be user or bot")
		return
	}
	body := strings.TrimSpace(payload.Body)
	if body == "" {
		utils.RespondError(w, http.StatusBadRequest, "body is required")
		return
	}

	message, err := h.chatSvc.Append(r.Context(), sender, body)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, message)
}

func (h *Handler) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Clear(r.Context()); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuery 直接调用模型，不写入历史
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt  string `json:"prompt"`
		Persona string `json:"persona"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, ok := h.resolvePersona(w, payload.Persona)
	if !ok {
		return
	}

	reply := h.aiSvc.Query(r.Context(), payload.Prompt, p)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"text": reply.String(),
		"ok":   reply.OK(),
	})
}

// handleChat 完整的一轮对话：保存用户消息、调用模型、保存回复
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
		Persona string `json:"persona"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, ok := h.resolvePersona(w, payload.Persona)
	if !ok {
		return
	}

	result, err := h.runner.Run(r.Context(), payload.Message, p)
	if errors.Is(err, turn.ErrEmptyMessage) {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"user": result.User,
		"bot":  result.Bot,
		"ok":   result.Reply.OK(),
	})
}

func (h *Handler) resolvePersona(w http.ResponseWriter, name string) (persona.Persona, bool) {
	if strings.TrimSpace(name) == "" {
		return h.defaultPersona, true
	}
	p, err := persona.Parse(name)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return p, true
}

func respondStorageError(w http.ResponseWriter, err error) {
	log.Printf("[chat] storage failure: %v", err)
	utils.RespondError(w, http.StatusInternalServerError, "storage unavailable")
}
