package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/config"
	"github.com/gokatarajesh/picture-riddle/internal/game"
	"github.com/gokatarajesh/picture-riddle/internal/question"
	"github.com/gokatarajesh/picture-riddle/internal/stats"
	httperrors "github.com/gokatarajesh/picture-riddle/pkg/http/errors"
	ws "github.com/gokatarajesh/picture-riddle/pkg/http/ws"
)

type testEnv struct {
	srv  *httptest.Server
	ctrl *game.Controller
	hub  *ws.Hub
}

func newTestEnv(t *testing.T, ready func() error) testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	c, err := catalog.Load("")
	require.NoError(t, err)
	tracker := stats.NewTracker(stats.NewMemoryStore(), logger, stats.TrackerOptions{})
	ctrl := game.NewController(c, question.NewSelector(c, question.NewRand(3)), tracker, game.Options{}, logger)
	hub := ws.NewHub(logger)
	unsubscribe := Broadcast(ctrl, hub, logger)

	cfg := &config.App{CORS: config.CORS{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         60,
	}}
	srv := httptest.NewServer(NewRouter(cfg, logger, Deps{
		Controller: ctrl,
		Catalog:    c,
		Hub:        hub,
		Metrics:    http.NotFoundHandler(),
		Ready:      ready,
	}))
	t.Cleanup(func() {
		srv.Close()
		unsubscribe()
		hub.CloseAll()
		ctrl.Close()
	})
	return testEnv{srv: srv, ctrl: ctrl, hub: hub}
}

func (e testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(e.srv.URL+path, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])

	degraded := newTestEnv(t, func() error { return errors.New("redis down") })
	resp = degraded.get(t, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGameFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.post(t, "/v1/game/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[game.Snapshot](t, resp)
	assert.Equal(t, game.PhasePlaying, snap.Phase)
	require.NotNil(t, snap.Question)
	assert.Len(t, snap.Question.Options, 4)
	assert.Empty(t, snap.Question.Answer)

	resp = env.post(t, "/v1/game/hint", nil)
	hint := decode[hintResponse](t, resp)
	assert.True(t, hint.Revealed)
	assert.NotEmpty(t, hint.State.Question.Image)

	resp = env.post(t, "/v1/game/next", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, httperrors.ErrCodeInvalidPhase, decode[httperrors.ErrorResponse](t, resp).Error)

	resp = env.post(t, "/v1/game/answer", answerRequest{Option: "definitely-not-offered"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, httperrors.ErrCodeUnknownOption, decode[httperrors.ErrorResponse](t, resp).Error)

	resp = env.post(t, "/v1/game/answer", answerRequest{Option: snap.Question.Options[0]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ans := decode[answerResponse](t, resp)
	assert.True(t, ans.Resolution.Applied)
	assert.True(t, ans.State.Question.Answered)
	assert.Equal(t, ans.Resolution.Answer, ans.State.Question.Answer)

	resp = env.post(t, "/v1/game/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[game.Snapshot](t, resp).QuestionCount)

	resp = env.get(t, "/v1/stats")
	report := decode[stats.Report](t, resp)
	assert.Equal(t, 1, report.TotalQuestions)
	assert.Equal(t, 1, report.TotalHintsUsed)
	assert.Len(t, report.Themes, 7)

	resp = env.post(t, "/v1/game/restart", nil)
	assert.Equal(t, game.PhaseStart, decode[game.Snapshot](t, resp).Phase)
}

func TestAnswerValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Post(env.srv.URL+"/v1/game/answer", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.post(t, "/v1/game/answer", map[string]string{})
	body := decode[httperrors.ErrorResponse](t, resp)
	assert.Equal(t, httperrors.ErrCodeMissingField, body.Error)
	assert.Equal(t, "option", body.Field)
}

func TestThemeSelectionOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get(t, "/v1/themes")
	themes := decode[map[string][]ThemeView](t, resp)["themes"]
	require.Len(t, themes, 7)
	assert.Equal(t, "Animals", themes[0].ID)
	assert.True(t, themes[0].Selected)

	resp = env.post(t, "/v1/themes/none", nil)
	assert.False(t, decode[game.Snapshot](t, resp).CanStart)

	resp = env.post(t, "/v1/game/start", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, httperrors.ErrCodeEmptyThemeSelection, decode[httperrors.ErrorResponse](t, resp).Error)

	resp = env.post(t, "/v1/themes/toggle", toggleRequest{Theme: "Nowhere"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.post(t, "/v1/themes/toggle", toggleRequest{Theme: "Music"})
	assert.Equal(t, []string{"Music"}, decode[game.Snapshot](t, resp).SelectedThemes)

	resp = env.post(t, "/v1/game/start", nil)
	snap := decode[game.Snapshot](t, resp)
	assert.Equal(t, "Music", snap.Question.Theme)

	resp = env.post(t, "/v1/themes/all", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStatsOverlayOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.post(t, "/v1/stats/reset", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.post(t, "/v1/stats/open", nil)
	assert.Equal(t, game.PhaseStats, decode[game.Snapshot](t, resp).Phase)

	resp = env.post(t, "/v1/stats/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[stats.Report](t, resp).TotalQuestions)

	resp = env.post(t, "/v1/stats/close", nil)
	assert.Equal(t, game.PhaseStart, decode[game.Snapshot](t, resp).Phase)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	req, err := http.NewRequest(http.MethodOptions, env.srv.URL+"/v1/game/start", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", resp.Header.Get("Access-Control-Allow-Methods"))
}

func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketStream(t *testing.T) {
	env := newTestEnv(t, nil)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/game"
	conn, _, err := websocket.DefaultDialer.DialContext(context.Background(), url, nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readMessage(t, conn)
	assert.Equal(t, ws.TypeState, initial.Type)
	assert.Eventually(t, func() bool { return env.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypeStart}))
	msg := readMessage(t, conn)
	require.Equal(t, ws.TypeQuestion, msg.Type)

	var ev game.Event
	require.NoError(t, msg.Decode(&ev))
	require.NotNil(t, ev.Snapshot.Question)

	answer, err := ws.NewMessage(ws.TypeAnswer, ws.AnswerPayload{Option: ev.Snapshot.Question.Options[0]})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(answer))

	msg = readMessage(t, conn)
	require.Equal(t, ws.TypeResolved, msg.Type)
	require.NoError(t, msg.Decode(&ev))
	require.NotNil(t, ev.Resolution)
	assert.True(t, ev.Resolution.Applied)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "dance", RequestID: "r1"}))
	msg = readMessage(t, conn)
	assert.Equal(t, ws.TypeError, msg.Type)
	assert.Equal(t, "r1", msg.RequestID)
	var payload ws.ErrorPayload
	require.NoError(t, msg.Decode(&payload))
	assert.Equal(t, httperrors.ErrCodeUnknownMessageType, payload.Code)
}
