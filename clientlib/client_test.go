package clientlib

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelab/route-planner/internal/services/agent"
	"github.com/routelab/route-planner/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{Attempts: 2, Delay: time.Millisecond}
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return New(server.URL, WithPolicy(fastPolicy())), server
}

func TestHealth(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	assert.NoError(t, client.Health(context.Background()))
}

func TestEchoRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"detail": "Service temporarily unavailable (attempt 1/3)"}`))
			return
		}
		w.Write([]byte(`{"message": "hi", "echo": "hi", "attempts": 2}`))
	}))
	defer server.Close()

	result, err := client.Echo(context.Background(), "c1", "hi")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "hi", result.Echo)
	assert.Equal(t, 2, result.Attempts)
}

func TestEchoSurfacesLastFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "still down"}`))
	}))
	defer server.Close()

	_, err := client.Echo(context.Background(), "c1", "hi")
	require.Error(t, err)
	// the attempt budget caps the calls even when the server never recovers
	assert.Equal(t, 2, calls)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "still down", apiErr.Message)
}

func TestValidationErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "goal must be between 3 and 160 characters"}`))
	}))
	defer server.Close()

	_, err := client.GeneratePlan(context.Background(), &PlanRequest{Goal: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Message, "goal must be")
}

func TestGeneratePlanDecodesPlan(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PlanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Deliver parcels", req.Goal)

		w.Write([]byte(`{
			"goal": "Deliver parcels",
			"audience": {"role": "Driver", "experience_level": "beginner"},
			"created_at": "2025-06-10T12:00:00Z",
			"version": "1.0.0",
			"steps": [{"title": "Route Assessment", "description": "Review stops.", "owner": "Route Planner", "duration_minutes": 30, "acceptance_criteria": []}],
			"risks": ["Traffic congestion"]
		}`))
	}))
	defer server.Close()

	plan, err := client.GeneratePlan(context.Background(), &PlanRequest{
		Goal: "Deliver parcels", AudienceRole: "Driver", AudienceExperience: "beginner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Driver", plan.Audience.Role)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "Route Assessment", plan.Steps[0].Title)
}

func TestPlanHistorySendsLimit(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"runs": [{"id": 1, "goal": "Deliver parcels", "summary": "s"}], "total": 1}`))
	}))
	defer server.Close()

	runs, err := client.PlanHistory(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, uint(1), runs[0].ID)
}

func TestValidateRoute(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/validate-route", r.URL.Path)
		w.Write([]byte(`{
			"is_valid": true,
			"issues": [],
			"recommendations": ["Start earlier"],
			"action_plan": ["Step 1"],
			"summary": "Route RT-1 is valid with 1 stops covering an estimated 8.0 km.",
			"tool_calls": [{"tool": "check_weather", "arguments": {"location": "Depot"}, "output_preview": "Clear"}],
			"rag_contexts": [],
			"used_llm": false
		}`))
	}))
	defer server.Close()

	verdict, err := client.ValidateRoute(context.Background(), &RouteRequest{
		RouteID:          "RT-1",
		StartLocation:    "Depot",
		PlannedStartTime: "2025-06-10T12:00:00Z",
		Stops:            []DeliveryStop{{StopID: "S1", Location: "Main St", SequenceNumber: 1}},
	})
	require.NoError(t, err)
	assert.True(t, verdict.IsValid)
	require.Len(t, verdict.ToolCalls, 1)
	assert.Equal(t, "check_weather", verdict.ToolCalls[0].Tool)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "routing", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("k"))
		w.Write([]byte(`{"results": [{"content": "Plan early.", "source": "guide.md", "score": 0.2}], "query": "routing", "total": 1}`))
	}))
	defer server.Close()

	results, err := client.Search(context.Background(), "routing", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "guide.md", results[0].Source)
}

func TestGenerateUnconfiguredBackend(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "LLM provider not configured. Please set GEMINI_API_KEY or GROQ_API_KEY."}`))
	}))
	defer server.Close()

	_, err := client.Generate(context.Background(), "hello")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "not configured")
}

func TestReverseGeocode(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, 52.52, req["latitude"], 0.001)

		w.Write([]byte(`{"place_name": "Berlin, Germany", "city": "Berlin", "country": "Germany", "formatted": "Berlin, Germany", "coordinates": {"latitude": 52.52, "longitude": 13.405}}`))
	}))
	defer server.Close()

	result, err := client.ReverseGeocode(context.Background(), 52.52, 13.405)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", result.City)
}

func TestResetEchoEscapesClientKey(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/echo/reset/c%201", r.URL.EscapedPath())
		w.Write([]byte(`{"deleted": 2, "client_key": "c 1"}`))
	}))
	defer server.Close()

	result, err := client.ResetEcho(context.Background(), "c 1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Deleted)
}

func TestRouteRequestMatchesServerSchema(t *testing.T) {
	t.Parallel()

	lat, lon := 37.7749, -122.4194
	stopLat, stopLon := 37.79, -122.41
	maxHours, capacity := 8.0, 1200.0

	req := &RouteRequest{
		RouteID:          "RT-9",
		StartLocation:    "SF Depot",
		PlannedStartTime: "2025-06-10T07:00:00Z",
		VehicleID:        "VAN-42",
		VehicleType:      "van",
		StartLatitude:    &lat,
		StartLongitude:   &lon,
		Stops: []DeliveryStop{{
			StopID:             "S1",
			Location:           "Market St",
			SequenceNumber:     1,
			TimeWindowStart:    "08:00",
			TimeWindowEnd:      "10:00",
			Priority:           "high",
			ServiceTimeMinutes: 10,
			Latitude:           &stopLat,
			Longitude:          &stopLon,
		}},
		Constraints: &RouteConstraints{
			MaxRouteDurationHours: &maxHours,
			DriverShiftEnd:        "17:00",
			VehicleCapacity:       &capacity,
			Notes:                 "fragile cargo",
		},
		Task: "validate_and_recommend",
	}

	encoded, err := json.Marshal(req)
	require.NoError(t, err)

	// every field the client sends must land in the server's request type
	var decoded agent.RouteRequest
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, "VAN-42", decoded.VehicleID)
	require.NotNil(t, decoded.StartLatitude)
	assert.Equal(t, lat, *decoded.StartLatitude)
	require.NotNil(t, decoded.StartLongitude)
	assert.Equal(t, lon, *decoded.StartLongitude)

	require.Len(t, decoded.Stops, 1)
	assert.Equal(t, "08:00", decoded.Stops[0].TimeWindowStart)
	assert.Equal(t, 10, decoded.Stops[0].ServiceTimeMinutes)
	require.NotNil(t, decoded.Stops[0].Latitude)
	assert.Equal(t, stopLat, *decoded.Stops[0].Latitude)

	require.NotNil(t, decoded.Constraints)
	require.NotNil(t, decoded.Constraints.MaxRouteDurationHours)
	assert.Equal(t, maxHours, *decoded.Constraints.MaxRouteDurationHours)
	assert.Equal(t, "17:00", decoded.Constraints.DriverShiftEnd)
	require.NotNil(t, decoded.Constraints.VehicleCapacity)
	assert.Equal(t, capacity, *decoded.Constraints.VehicleCapacity)
	assert.Equal(t, "fragile cargo", decoded.Constraints.Notes)

	require.NoError(t, decoded.Validate())
}

func TestParseAPIErrorShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail": "plain message"}`, "plain message"},
		{"detail array", `{"detail": [{"msg": "field required", "loc": ["body", "goal"]}]}`, "field required"},
		{"message fallback", `{"message": "proxy says no"}`, "proxy says no"},
		{"unparseable body", `<html>bad gateway</html>`, "Request failed with status 502"},
		{"empty object", `{}`, "Request failed with status 502"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			apiErr := parseAPIError(502, []byte(tc.body))
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Equal(t, 502, apiErr.Status)
		})
	}
}
