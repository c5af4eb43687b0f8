package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
	"github.com/zhouzirui/pocket-coach/internal/model/persona"
	"github.com/zhouzirui/pocket-coach/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	defaultPersona persona.Persona
}

// New 创建persona处理器
func New(defaultPersona persona.Persona) *Handler {
	return &Handler{defaultPersona: defaultPersona}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/starters", h.handleListStarters)
}

// handleListPersonas 列出所有persona，默认persona以配置为准
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	profiles := persona.Profiles()
	for i := range profiles {
		profiles[i].Default = profiles[i].Name == h.defaultPersona
	}
	utils.RespondJSON(w, http.StatusOK, profiles)
}

func (h *Handler) handleListStarters(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, chat.Starters())
}
