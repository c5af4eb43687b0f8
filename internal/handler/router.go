package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/pocket-coach/internal/handler/chat"
	"github.com/zhouzirui/pocket-coach/internal/handler/persona"
	"github.com/zhouzirui/pocket-coach/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/pocket-coach/internal/middleware"
	personaModel "github.com/zhouzirui/pocket-coach/internal/model/persona"
	aiService "github.com/zhouzirui/pocket-coach/internal/service/ai"
	chatService "github.com/zhouzirui/pocket-coach/internal/service/chat"
	"github.com/zhouzirui/pocket-coach/internal/service/turn"
	"github.com/zhouzirui/pocket-coach/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, aiSvc *aiService.Service, defaultPersona personaModel.Persona) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	runner := turn.NewRunner(chatSvc, aiSvc)

	personaHandler := persona.New(defaultPersona)
	chatHandler := chat.New(chatSvc, aiSvc, runner, defaultPersona)
	wsHandler := ws.NewWebSocketHandler(chatSvc, runner, defaultPersona)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
