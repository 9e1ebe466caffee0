package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/routelab/route-planner/internal/domain"
	"github.com/routelab/route-planner/internal/repository/agentrun"
	echorepo "github.com/routelab/route-planner/internal/repository/echo"
	"github.com/routelab/route-planner/internal/repository/routerun"
	"github.com/routelab/route-planner/internal/services"
	"github.com/routelab/route-planner/internal/services/agent"
	"github.com/routelab/route-planner/internal/services/echo"
	"github.com/routelab/route-planner/internal/services/planner"
	"github.com/routelab/route-planner/internal/services/rag"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.EchoAttempt{}, &domain.RouteRun{}, &domain.AgentRun{},
	))
	return db
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewHealthHandler().Health(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestEchoHandlerFlakySequence(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	handler := NewEchoHandler(echo.NewService(echorepo.NewAttemptRepository(db), &services.NoOpLogger{}))

	callEcho := func() *httptest.ResponseRecorder {
		body := bytes.NewBufferString(`{"message": "hello", "client_key": "c1"}`)
		rec := httptest.NewRecorder()
		handler.Echo(rec, httptest.NewRequest("POST", "/echo", body))
		return rec
	}

	rec := callEcho()
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	detail, ok := decodeBody(t, rec)["detail"].(string)
	require.True(t, ok)
	assert.Contains(t, detail, "Service temporarily unavailable")

	// at most 3 failures are simulated, the 4th call must succeed
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = callEcho()
		if last.Code == http.StatusOK {
			break
		}
	}
	require.Equal(t, http.StatusOK, last.Code)
	body := decodeBody(t, last)
	assert.Equal(t, "hello", body["echo"])
	assert.GreaterOrEqual(t, body["attempts"].(float64), 2.0)
}

func TestEchoHandlerRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	handler := NewEchoHandler(echo.NewService(echorepo.NewAttemptRepository(db), &services.NoOpLogger{}))

	rec := httptest.NewRecorder()
	handler.Echo(rec, httptest.NewRequest("POST", "/echo", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEchoHandlerReset(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	svc := echo.NewService(echorepo.NewAttemptRepository(db), &services.NoOpLogger{})
	handler := NewEchoHandler(svc)

	_, _ = svc.Echo(context.Background(), "c2", "hi")

	req := httptest.NewRequest("DELETE", "/echo/reset/c2", nil)
	req = mux.SetURLVars(req, map[string]string{"client_key": "c2"})
	rec := httptest.NewRecorder()
	handler.Reset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 1.0, body["deleted"])
	assert.Equal(t, "c2", body["client_key"])
}

func TestPlannerHandlerGeneratePlan(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	handler := NewPlannerHandler(planner.NewService(routerun.NewRouteRunRepository(db), &services.NoOpLogger{}))

	body := bytes.NewBufferString(`{
		"goal": "Deliver 20 parcels downtown",
		"audience_role": "Driver",
		"audience_experience": "beginner"
	}`)
	rec := httptest.NewRecorder()
	handler.GeneratePlan(rec, httptest.NewRequest("POST", "/planner/route", body))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Deliver 20 parcels downtown", resp["goal"])
	assert.Len(t, resp["steps"], 5)
}

func TestPlannerHandlerValidationError(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	handler := NewPlannerHandler(planner.NewService(routerun.NewRouteRunRepository(db), &services.NoOpLogger{}))

	body := bytes.NewBufferString(`{"goal": "x", "audience_role": "Driver", "audience_experience": "beginner"}`)
	rec := httptest.NewRecorder()
	handler.GeneratePlan(rec, httptest.NewRequest("POST", "/planner/route", body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["detail"])
}

func TestPlannerHandlerValidatePlanRepairs(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	handler := NewPlannerHandler(planner.NewService(routerun.NewRouteRunRepository(db), &services.NoOpLogger{}))

	rec := httptest.NewRecorder()
	handler.ValidatePlan(rec, httptest.NewRequest("POST", "/planner/route/validate", bytes.NewBufferString(`{}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["repaired"])
}

func TestPlannerHandlerHistory(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	svc := planner.NewService(routerun.NewRouteRunRepository(db), &services.NoOpLogger{})
	handler := NewPlannerHandler(svc)

	_, err := svc.GeneratePlan(context.Background(), &planner.PlanRequest{
		Goal: "Deliver parcels", AudienceRole: "Driver", AudienceExperience: "intermediate",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.History(rec, httptest.NewRequest("GET", "/planner/route/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, 1.0, resp["total"])
}

func newAgentHandler(t *testing.T) (*AgentHandler, *agent.Service) {
	t.Helper()
	db := testDB(t)
	log := &services.NoOpLogger{}
	svc := agent.NewService(
		agentrun.NewAgentRunRepository(db),
		nil, nil,
		agent.NewWeatherClient("", log),
		3,
		log,
	)
	return NewAgentHandler(svc, nil), svc
}

func TestAgentHandlerValidateRoute(t *testing.T) {
	t.Parallel()

	handler, _ := newAgentHandler(t)

	body := bytes.NewBufferString(`{
		"route_id": "RT-1",
		"start_location": "Depot",
		"planned_start_time": "2025-06-10T12:00:00Z",
		"stops": [{"stop_id": "S1", "location": "Main St", "sequence_number": 1}],
		"task": "validate_route"
	}`)
	rec := httptest.NewRecorder()
	handler.ValidateRoute(rec, httptest.NewRequest("POST", "/ai/validate-route", body))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["is_valid"])
	assert.NotEmpty(t, resp["summary"])
}

func TestAgentHandlerValidateRouteBadPayload(t *testing.T) {
	t.Parallel()

	handler, _ := newAgentHandler(t)

	rec := httptest.NewRecorder()
	handler.ValidateRoute(rec, httptest.NewRequest("POST", "/ai/validate-route", bytes.NewBufferString(`{"route_id": "RT-1"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAgentHandlerRoutes(t *testing.T) {
	t.Parallel()

	handler, _ := newAgentHandler(t)

	rec := httptest.NewRecorder()
	handler.Routes(rec, httptest.NewRequest("GET", "/ai/routes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, decodeBody(t, rec)["total"])
}

func TestAgentHandlerSearchEmptyQuery(t *testing.T) {
	t.Parallel()

	handler, _ := newAgentHandler(t)

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest("GET", "/ai/search?query=", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubRetriever struct{}

func (stubRetriever) Search(ctx context.Context, query string, k int) ([]rag.Context, error) {
	return []rag.Context{{Content: "Plan routes early.", Source: "guide.md", Score: 0.2}}, nil
}

func TestAgentHandlerSearch(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	log := &services.NoOpLogger{}
	svc := agent.NewService(agentrun.NewAgentRunRepository(db), stubRetriever{}, nil, agent.NewWeatherClient("", log), 3, log)
	handler := NewAgentHandler(svc, stubRetriever{})

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest("GET", "/ai/search?query=routing&k=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "routing", resp["query"])
	assert.Equal(t, 1.0, resp["total"])
}

func TestChatHandler(t *testing.T) {
	t.Parallel()

	_, svc := newAgentHandler(t)
	handler := NewChatHandler(svc)

	body := bytes.NewBufferString(`{"question": "What is the weather in Cairo?"}`)
	rec := httptest.NewRecorder()
	handler.Chat(rec, httptest.NewRequest("POST", "/ai/chat", body))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.NotEmpty(t, resp["answer"])
	assert.NotEmpty(t, resp["tool_calls"])
}

func TestChatHandlerRejectsLongQuestion(t *testing.T) {
	t.Parallel()

	_, svc := newAgentHandler(t)
	handler := NewChatHandler(svc)

	long := strings.Repeat("a", 2001)
	body := bytes.NewBufferString(`{"question": "` + long + `"}`)
	rec := httptest.NewRecorder()
	handler.Chat(rec, httptest.NewRequest("POST", "/ai/chat", body))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

type stubProvider struct {
	content string
	err     error
}

func (s stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return s.content, s.err
}

func (s stubProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func (s stubProvider) ModelName() string { return "test-model" }

func TestGeminiHandlerGenerate(t *testing.T) {
	t.Parallel()

	handler := NewGeminiHandler(stubProvider{content: "Generated text."})

	body := bytes.NewBufferString(`{"prompt": "Say hello"}`)
	rec := httptest.NewRecorder()
	handler.Generate(rec, httptest.NewRequest("POST", "/gemini/generate", body))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Generated text.", resp["content"])
	assert.Equal(t, "test-model", resp["model"])
}

func TestGeminiHandlerUnconfigured(t *testing.T) {
	t.Parallel()

	handler := NewGeminiHandler(nil)

	body := bytes.NewBufferString(`{"prompt": "Say hello"}`)
	rec := httptest.NewRecorder()
	handler.Generate(rec, httptest.NewRequest("POST", "/gemini/generate", body))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "not configured")
}

func TestGeminiHandlerStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewGeminiHandler(stubProvider{}).Status(rec, httptest.NewRequest("GET", "/gemini/status", nil))
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["configured"])
	assert.Equal(t, "test-model", resp["model"])

	rec = httptest.NewRecorder()
	NewGeminiHandler(nil).Status(rec, httptest.NewRequest("GET", "/gemini/status", nil))
	assert.Equal(t, false, decodeBody(t, rec)["configured"])
}
