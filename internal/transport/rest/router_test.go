package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/cache"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/service"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/transport/ws"
)

type testAPI struct {
	handler http.Handler
	token   string
	redis   *miniredis.Miniredis
	hub     *ws.Hub
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

// q2 is hidden unless q1 is "yes"; q2 feeds the security dimension
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := &memStore{
		sessions: map[string]*model.Session{"s1": {ID: "s1", QuestionnaireID: "qn-1", Status: model.SessionInProgress}},
		questions: []*model.Question{
			{ID: "q1", QuestionnaireID: "qn-1", Text: "Do you have a threat model?", SectionOrder: 1, OrderIndex: 1},
			{ID: "q2", QuestionnaireID: "qn-1", Text: "When was it reviewed?", SectionOrder: 1, OrderIndex: 2,
				DimensionKey: strPtr("security"), Severity: floatPtr(0.9)},
		},
		rules: []*model.VisibilityRule{{
			ID:                "r-hide",
			QuestionID:        "q2",
			QuestionnaireID:   "qn-1",
			Condition:         model.Leaf("q1", model.OpNotEquals, "yes"),
			Action:            model.ActionHide,
			TargetQuestionIDs: []string{"q2"},
			Priority:          1,
			IsActive:          true,
		}},
		responses: []*model.Response{
			{SessionID: "s1", QuestionID: "q2", Coverage: floatPtr(0.1)},
		},
		dimensions: []*model.Dimension{
			{ID: "d-sec", Key: "security", DisplayName: "Security", Weight: 0.15, IsActive: true},
		},
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	auth := service.NewAuthService("router-secret", time.Hour)
	adaptive := service.NewAdaptiveLogicService(questionRepo{store}, ruleRepo{store}, nil)
	heatmap := service.NewHeatmapService(sessionRepo{store}, questionRepo{store}, responseRepo{store},
		dimensionRepo{store}, cache.NewHeatmapCache(rdb, time.Minute), nil)
	events := service.NewSessionEventService(adaptive, heatmap, nil)

	hub := ws.NewHub(nil)
	t.Cleanup(hub.Close)
	events.SetBroadcaster(hub)

	token, err := auth.IssueToken("user_test")
	require.NoError(t, err)

	return &testAPI{
		handler: NewRouter(&Container{
			AuthService:     auth,
			AdaptiveService: adaptive,
			HeatmapService:  heatmap,
			EventsService:   events,
			Questions:       questionRepo{store},
			WSHub:           hub,
		}),
		token: token.Token,
		redis: mr,
		hub:   hub,
	}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthIsPublic(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAPIRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/heatmap/s1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/heatmap/s1", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPreflightSkipsAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/heatmap/s1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestAuthMe(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"user_test"}`, rec.Body.String())
}

func TestHeatmapEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/heatmap/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[model.HeatmapResult](t, rec)
	assert.Equal(t, 4, result.Summary.TotalCells)
	assert.Equal(t, 1, result.Summary.CriticalGapCount)
	assert.True(t, api.redis.Exists(cache.HeatmapKey("s1")))

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[model.HeatmapSummary](t, rec)
	assert.InDelta(t, 0.81, summary.OverallRiskScore, 1e-9)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/cells?severity=critical", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cells := decode[[]model.HeatmapCell](t, rec)
	require.Len(t, cells, 1)
	assert.Equal(t, model.ColorRed, cells[0].ColorCode)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeatmapExports(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/heatmap/s1/export/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="heatmap-s1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Dimension,Low,Medium,High,Critical\nsecurity,0.0000,0.0000,0.0000,0.8100\n"))

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/export/markdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "| security | G 0.00 | G 0.00 | G 0.00 | R 0.81 |")

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/export/html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<table>")
}

func TestHeatmapAnalysisEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/heatmap/s1/drilldown/security/Critical", "")
	require.Equal(t, http.StatusOK, rec.Code)
	drilldown := decode[model.HeatmapDrilldown](t, rec)
	require.Len(t, drilldown.ContributingQuestions, 1)
	assert.Equal(t, "q2", drilldown.ContributingQuestions[0].QuestionID)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/drilldown/security/Extreme", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/drilldown/finance/High", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/priority-gaps", "")
	require.Equal(t, http.StatusOK, rec.Code)
	gaps := decode[[]model.PriorityGap](t, rec)
	require.Len(t, gaps, 1)
	assert.InDelta(t, 0.243, gaps[0].PriorityScore, 1e-9)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/priority-gaps?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/s1/action-plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[model.ActionPlan](t, rec)
	require.Len(t, plan.Phases, 3)
	assert.Len(t, plan.Phases[0].Gaps, 1)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/compare/s1/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cmp := decode[model.HeatmapComparison](t, rec)
	assert.Equal(t, "s1", cmp.BaselineSessionID)
	assert.Equal(t, model.TrendStable, cmp.Summary.OverallTrend)

	rec = api.do(t, http.MethodGet, "/v1/heatmap/compare/s1/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidateCacheEndpoint(t *testing.T) {
	api := newTestAPI(t)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/v1/heatmap/s1", "").Code)
	require.True(t, api.redis.Exists(cache.HeatmapKey("s1")))

	rec := api.do(t, http.MethodDelete, "/v1/heatmap/s1/cache", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, api.redis.Exists(cache.HeatmapKey("s1")))
}

func TestVisibleQuestionsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/questionnaires/qn-1/visible-questions", `{"responses":{"q1":"yes"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	questions := decode[[]model.Question](t, rec)
	require.Len(t, questions, 2)
	assert.Equal(t, "q2", questions[1].ID)

	rec = api.do(t, http.MethodPost, "/v1/questionnaires/qn-1/visible-questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	questions = decode[[]model.Question](t, rec)
	require.Len(t, questions, 1)
	assert.Equal(t, "q1", questions[0].ID)

	rec = api.do(t, http.MethodPost, "/v1/questionnaires/qn-1/visible-questions", `{"responses":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNextQuestionEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/questions/q1/next", `{"responses":{"q1":"yes"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Question *model.Question `json:"question"`
		Done     bool            `json:"done"`
	}](t, rec)
	require.NotNil(t, body.Question)
	assert.Equal(t, "q2", body.Question.ID)
	assert.False(t, body.Done)

	rec = api.do(t, http.MethodPost, "/v1/questions/q1/next", `{"responses":{"q1":"no"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"question":null,"done":true}`, rec.Body.String())
}

func TestQuestionStateEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/questions/q2/state", `{"responses":{"q1":"no"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	eval := decode[model.StateEvaluation](t, rec)
	assert.Equal(t, "q2", eval.QuestionID)
	assert.False(t, eval.State.Visible)
	assert.Equal(t, []string{"r-hide"}, eval.AppliedRules)

	rec = api.do(t, http.MethodPost, "/v1/questions/unknown/state", `{"responses":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRulesAndGraphEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/questions/q2/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[[]model.VisibilityRule](t, rec)
	require.Len(t, rules, 1)
	assert.Equal(t, "r-hide", rules[0].ID)

	rec = api.do(t, http.MethodGet, "/v1/questionnaires/qn-1/dependency-graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"q1":["q2"]}`, rec.Body.String())
}

func TestAdaptiveChangesEndpoint(t *testing.T) {
	api := newTestAPI(t)

	sub := &ws.Connection{SessionID: "s1", UserID: "user_test", Send: make(chan []byte, 8), Hub: api.hub}
	api.hub.Register(sub)
	require.Eventually(t, func() bool { return api.hub.Subscribers("s1") == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/v1/heatmap/s1", "").Code)

	rec := api.do(t, http.MethodPost, "/v1/sessions/s1/adaptive-changes",
		`{"questionnaireId":"qn-1","previous":{"q1":"yes"},"current":{"q1":"no"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added":[],"removed":["q2"]}`, rec.Body.String())
	assert.False(t, api.redis.Exists(cache.HeatmapKey("s1")))

	var types []ws.MessageType
	for len(types) < 2 {
		select {
		case data := <-sub.Send:
			var msg ws.Message
			require.NoError(t, json.Unmarshal(data, &msg))
			types = append(types, msg.Type)
		case <-time.After(time.Second):
			t.Fatalf("expected two messages, got %v", types)
		}
	}
	assert.Equal(t, []ws.MessageType{ws.MsgAdaptiveChanges, ws.MsgHeatmapInvalidated}, types)

	rec = api.do(t, http.MethodPost, "/v1/sessions/s1/adaptive-changes", `{"previous":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
