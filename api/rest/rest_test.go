package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/platformerkit/server/api/rest"
	"github.com/kasuganosora/platformerkit/server/game/brain"
	"github.com/kasuganosora/platformerkit/server/game/world"
	"github.com/kasuganosora/platformerkit/server/journal"
	mw "github.com/kasuganosora/platformerkit/server/middleware"
	"github.com/kasuganosora/platformerkit/server/scheduler"
	"github.com/kasuganosora/platformerkit/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router  *gin.Engine
	world   *world.World
	journal *journal.Service
	loop    *scheduler.Loop
	ids     map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	db := testutil.SetupTestDB(t)
	j := journal.New(db, journal.Options{FlushInterval: 10 * time.Millisecond}, logger)
	t.Cleanup(func() { j.Stop(context.Background()) })

	lvl, err := world.ParseLevel([]byte(`
name: api
terrain:
  - "......"
  - "######"
teams:
  - name: heroes
  - name: slimes
characters:
  - name: hero
    team: heroes
    brain: idle
    x: 1.5
  - name: slime
    team: slimes
    brain: idle
    x: 3.5
`))
	require.NoError(t, err)
	brains := func(string) (*brain.Definition, error) { return &brain.Definition{Name: "idle"}, nil }
	w, err := world.FromLevel(lvl, brains, 50*time.Millisecond, logger, j.Listen)
	require.NoError(t, err)

	loop := scheduler.NewLoop("world", 50*time.Millisecond, w.Tick, logger)
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)
	t.Cleanup(loop.Stop)

	charH := rest.NewCharacterHandler(w, logger)
	transH := rest.NewTransitionHandler(j, logger)
	adminH := rest.NewAdminHandler(context.Background(), w, loop, sched, j, logger)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	api := r.Group("/api", mw.AdminKey(adminKey))
	api.GET("/characters", charH.List)
	api.GET("/characters/:id", charH.Detail)
	api.GET("/characters/:id/tree", charH.Tree)
	api.POST("/characters/:id/hit", charH.Hit)
	api.GET("/transitions", transH.List)
	api.GET("/admin/metrics", adminH.Metrics)
	api.POST("/admin/pause", adminH.Pause)
	api.POST("/admin/resume", adminH.Resume)
	api.POST("/admin/step", adminH.Step)

	ids := make(map[string]string)
	for _, s := range w.Snapshots() {
		ids[s.Name] = s.ID
	}
	return &fixture{router: r, world: w, journal: j, loop: loop, ids: ids}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(mw.AdminKeyHeader, adminKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCharacters_RequireKey(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/characters", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCharacters_List(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodGet, "/api/characters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["count"])

	chars := resp["characters"].([]interface{})
	first := chars[0].(map[string]interface{})
	assert.Equal(t, "hero", first["name"])
	assert.Equal(t, "heroes", first["team"])
	assert.Equal(t, "idle", first["state"])
}

func TestCharacters_Detail(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodGet, "/api/characters/"+f.ids["slime"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "slime", resp["name"])
	assert.Equal(t, float64(3), resp["health"])

	w, _ = f.do(t, http.MethodGet, "/api/characters/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(t, http.MethodGet, "/api/characters/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCharacters_Tree(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodGet, "/api/characters/"+f.ids["hero"]+"/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["on_awake"])
	assert.Empty(t, resp["on_tick"])
}

func TestCharacters_Hit(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodPost, "/api/characters/"+f.ids["slime"]+"/hit", rest.HitRequest{Damage: 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["landed"])
	ch := resp["character"].(map[string]interface{})
	assert.Equal(t, float64(1), ch["health"])
	assert.Equal(t, "flinch", ch["state"])

	// Default damage is 1 when no body is sent.
	w, resp = f.do(t, http.MethodPost, "/api/characters/"+f.ids["slime"]+"/hit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ch = resp["character"].(map[string]interface{})
	assert.Equal(t, float64(0), ch["health"])

	// Dead characters cannot be hit again.
	_, resp = f.do(t, http.MethodPost, "/api/characters/"+f.ids["slime"]+"/hit", nil)
	assert.Equal(t, false, resp["landed"])

	w, _ = f.do(t, http.MethodPost, "/api/characters/"+f.ids["slime"]+"/hit", rest.HitRequest{Damage: -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransitions_List(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/characters/"+f.ids["slime"]+"/hit", nil)

	var transitions []interface{}
	require.Eventually(t, func() bool {
		_, resp := f.do(t, http.MethodGet, "/api/transitions?character_id="+f.ids["slime"], nil)
		transitions, _ = resp["transitions"].([]interface{})
		return len(transitions) == 2
	}, 2*time.Second, 20*time.Millisecond)

	newest := transitions[0].(map[string]interface{})
	assert.Equal(t, "idle", newest["from_state"])
	assert.Equal(t, "flinch", newest["to_state"])

	w, _ := f.do(t, http.MethodGet, "/api/transitions?since_tick=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_PauseStepResume(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(t, http.MethodPost, "/api/admin/step", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["tick"])

	w, _ = f.do(t, http.MethodPost, "/api/admin/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/admin/resume", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/admin/step", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/admin/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.loop.Running())

	w, resp = f.do(t, http.MethodGet, "/api/admin/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["characters"])
	assert.Equal(t, float64(50), resp["step_ms"])
	assert.Equal(t, true, resp["journal_enabled"])
	assert.Equal(t, false, resp["running"])
}
