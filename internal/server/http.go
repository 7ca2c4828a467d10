package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/config"
	"github.com/gokatarajesh/picture-riddle/internal/game"
	ws "github.com/gokatarajesh/picture-riddle/pkg/http/ws"
)

// Deps are the collaborators the HTTP surface dispatches to.
type Deps struct {
	Controller *game.Controller
	Catalog    *catalog.Catalog
	Hub        *ws.Hub
	Metrics    http.Handler
	Ready      func() error
}

// NewHTTPServer wraps the router in an http.Server bound to cfg.HTTPAddr.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps Deps) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(cfg, logger, deps),
	}
}

// NewRouter wires health, metrics, the game API and the event stream.
func NewRouter(cfg *config.App, logger zerolog.Logger, deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				requestLog(r).Warn().Err(err).Msg("readiness check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	h := NewGameHandlers(deps.Controller, deps.Catalog, logger)
	mux.HandleFunc("GET /v1/state", h.State)
	mux.HandleFunc("GET /v1/themes", h.Themes)
	mux.HandleFunc("GET /v1/stats", h.Stats)

	mux.HandleFunc("POST /v1/game/start", h.Start)
	mux.HandleFunc("POST /v1/game/restart", h.Restart)
	mux.HandleFunc("POST /v1/game/next", h.Next)
	mux.HandleFunc("POST /v1/game/hint", h.Hint)
	mux.HandleFunc("POST /v1/game/answer", h.Answer)

	mux.HandleFunc("POST /v1/themes/toggle", h.ToggleTheme)
	mux.HandleFunc("POST /v1/themes/all", h.SelectAll)
	mux.HandleFunc("POST /v1/themes/none", h.DeselectAll)

	mux.HandleFunc("POST /v1/stats/open", h.OpenStats)
	mux.HandleFunc("POST /v1/stats/close", h.CloseStats)
	mux.HandleFunc("POST /v1/stats/reset", h.ResetStats)

	if deps.Hub != nil {
		sock := NewGameSocket(deps.Controller, deps.Hub, newUpgrader(cfg.CORS.AllowedOrigins), logger)
		mux.HandleFunc("GET /ws/game", sock.HandleWebSocket)
	}

	return RequestLogger(logger)(CORS(cfg.CORS)(mux))
}

func newUpgrader(allowed []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(allowed, origin)
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}
