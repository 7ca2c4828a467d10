package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/game"
	httperrors "github.com/gokatarajesh/picture-riddle/pkg/http/errors"
)

// GameHandlers exposes the controller over JSON. Handlers only dispatch
// actions and render snapshots.
type GameHandlers struct {
	ctrl    *game.Controller
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

func NewGameHandlers(ctrl *game.Controller, c *catalog.Catalog, logger zerolog.Logger) *GameHandlers {
	return &GameHandlers{
		ctrl:    ctrl,
		catalog: c,
		logger:  logger.With().Str("component", "game_http").Logger(),
	}
}

type answerRequest struct {
	Option string `json:"option"`
}

type toggleRequest struct {
	Theme string `json:"theme"`
}

type answerResponse struct {
	Resolution game.Resolution `json:"resolution"`
	State      game.Snapshot   `json:"state"`
}

type hintResponse struct {
	Revealed bool          `json:"revealed"`
	State    game.Snapshot `json:"state"`
}

// ThemeView is one catalog theme as listed by GET /v1/themes.
type ThemeView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Color    string `json:"color,omitempty"`
	Items    int    `json:"items"`
	Selected bool   `json:"selected"`
}

func (h *GameHandlers) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *GameHandlers) Themes(w http.ResponseWriter, r *http.Request) {
	selected := make(map[string]bool)
	for _, id := range h.ctrl.Snapshot().SelectedThemes {
		selected[id] = true
	}
	themes := h.catalog.Themes()
	out := make([]ThemeView, 0, len(themes))
	for _, t := range themes {
		out = append(out, ThemeView{
			ID:       t.ID,
			Label:    t.Label,
			Color:    t.Color,
			Items:    len(t.Items),
			Selected: selected[t.ID],
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"themes": out})
}

func (h *GameHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Report())
}

func (h *GameHandlers) Start(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.Start())
}

func (h *GameHandlers) Restart(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Restart()
	h.respond(w, r, nil)
}

func (h *GameHandlers) Next(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.Next())
}

func (h *GameHandlers) Hint(w http.ResponseWriter, r *http.Request) {
	revealed := h.ctrl.RevealHint()
	writeJSON(w, http.StatusOK, hintResponse{Revealed: revealed, State: h.ctrl.Snapshot()})
}

func (h *GameHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}
	if req.Option == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "option is required", "option")
		return
	}

	res, err := h.ctrl.Answer(req.Option)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Resolution: res, State: h.ctrl.Snapshot()})
}

func (h *GameHandlers) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}
	if req.Theme == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "theme is required", "theme")
		return
	}
	h.respond(w, r, h.ctrl.ToggleTheme(req.Theme))
}

func (h *GameHandlers) SelectAll(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.SelectAllThemes())
}

func (h *GameHandlers) DeselectAll(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.DeselectAllThemes())
}

func (h *GameHandlers) OpenStats(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.OpenStats())
}

func (h *GameHandlers) CloseStats(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.CloseStats())
}

func (h *GameHandlers) ResetStats(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.ResetStats(); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Report())
}

// respond writes the current snapshot, or the mapped error.
func (h *GameHandlers) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *GameHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)
	if status == http.StatusInternalServerError {
		requestLog(r).Error().Err(err).Msg("game action failed")
		httperrors.RespondInternalError(w, "Internal error")
		return
	}
	httperrors.RespondError(w, status, code, err.Error())
}

// classify maps controller errors onto API codes.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, game.ErrEmptyThemeSelection):
		return httperrors.ErrCodeEmptyThemeSelection, http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrInvalidPhase):
		return httperrors.ErrCodeInvalidPhase, http.StatusConflict
	case errors.Is(err, catalog.ErrUnknownTheme):
		return httperrors.ErrCodeUnknownTheme, http.StatusNotFound
	case errors.Is(err, game.ErrUnknownOption):
		return httperrors.ErrCodeUnknownOption, http.StatusBadRequest
	default:
		return httperrors.ErrCodeInternalError, http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
