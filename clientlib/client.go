// Package clientlib is a typed Go client for the route planner REST API.
// Every call is retried with the same fixed-delay policy the web frontend
// uses, so short transient outages are absorbed without caller involvement.
package clientlib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/routelab/route-planner/retry"
)

// Client talks to a running route planner backend.
type Client struct {
	baseURL string
	http    *http.Client
	policy  retry.Policy
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPolicy replaces the retry policy used for every call.
func WithPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// New creates a client for the API at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		policy:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one API call with retries. Network failures and 5xx responses
// are retried under the client's policy; 4xx responses are terminal and
// returned as *APIError without further attempts.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = encoded
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	type reply struct {
		status int
		body   []byte
	}
	res, err := retry.DoValue(ctx, c.policy, func(ctx context.Context) (reply, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return reply{}, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return reply{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return reply{}, err
		}
		if resp.StatusCode >= 500 {
			return reply{}, parseAPIError(resp.StatusCode, data)
		}
		return reply{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return err
	}

	if res.status < 200 || res.status >= 300 {
		return parseAPIError(res.status, res.body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Health reports whether the backend is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// EchoResult is the successful echo payload.
type EchoResult struct {
	Message  string `json:"message"`
	Echo     string `json:"echo"`
	Attempts int    `json:"attempts"`
}

// Echo calls the flaky echo endpoint. The retry policy means transient 503s
// from the failure simulation are absorbed up to the attempt budget.
func (c *Client) Echo(ctx context.Context, clientKey, message string) (*EchoResult, error) {
	var out EchoResult
	err := c.do(ctx, http.MethodPost, "/echo", nil, map[string]string{
		"message":    message,
		"client_key": clientKey,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetResult reports how many echo attempt records were cleared.
type ResetResult struct {
	Deleted   int64  `json:"deleted"`
	ClientKey string `json:"client_key"`
}

// ResetEcho clears the echo failure simulation for a client key.
func (c *Client) ResetEcho(ctx context.Context, clientKey string) (*ResetResult, error) {
	var out ResetResult
	err := c.do(ctx, http.MethodDelete, "/echo/reset/"+url.PathEscape(clientKey), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PlanRequest asks the planner for a route plan.
type PlanRequest struct {
	Goal               string `json:"goal"`
	AudienceRole       string `json:"audience_role"`
	AudienceExperience string `json:"audience_experience"`
	PrimaryRisk        string `json:"primary_risk,omitempty"`
}

// PlanAudience describes who a plan is designed for.
type PlanAudience struct {
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
}

// PlanStep is one step of a generated route plan.
type PlanStep struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Owner              string   `json:"owner"`
	DurationMinutes    int      `json:"duration_minutes"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// Plan is a generated route plan.
type Plan struct {
	Goal      string       `json:"goal"`
	Audience  PlanAudience `json:"audience"`
	CreatedAt time.Time    `json:"created_at"`
	Version   string       `json:"version"`
	Steps     []PlanStep   `json:"steps"`
	Risks     []string     `json:"risks"`
}

// GeneratePlan builds and persists a route plan.
func (c *Client) GeneratePlan(ctx context.Context, req *PlanRequest) (*Plan, error) {
	var out Plan
	if err := c.do(ctx, http.MethodPost, "/planner/route", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlanValidation is the outcome of validating or repairing plan JSON.
type PlanValidation struct {
	Plan     Plan     `json:"plan"`
	Repaired bool     `json:"repaired"`
	Messages []string `json:"messages"`
}

// ValidatePlan submits arbitrary plan JSON for validation and repair.
func (c *Client) ValidatePlan(ctx context.Context, plan json.RawMessage) (*PlanValidation, error) {
	var out PlanValidation
	if err := c.do(ctx, http.MethodPost, "/planner/route/validate", nil, plan, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlanHistoryItem is a condensed stored plan run.
type PlanHistoryItem struct {
	ID                 uint            `json:"id"`
	Goal               string          `json:"goal"`
	AudienceRole       string          `json:"audience_role"`
	AudienceExperience string          `json:"audience_experience"`
	Summary            string          `json:"summary"`
	Plan               json.RawMessage `json:"plan"`
}

// PlanHistory lists recently generated plans, newest first.
func (c *Client) PlanHistory(ctx context.Context, limit int) ([]PlanHistoryItem, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Runs []PlanHistoryItem `json:"runs"`
	}
	if err := c.do(ctx, http.MethodGet, "/planner/route/history", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

// DeliveryStop is one stop on a route submitted for validation.
type DeliveryStop struct {
	StopID             string   `json:"stop_id"`
	Location           string   `json:"location"`
	SequenceNumber     int      `json:"sequence_number"`
	TimeWindowStart    string   `json:"time_window_start,omitempty"`
	TimeWindowEnd      string   `json:"time_window_end,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	ServiceTimeMinutes int      `json:"service_time_minutes,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
}

// RouteConstraints bounds the route during validation.
type RouteConstraints struct {
	MaxRouteDurationHours *float64 `json:"max_route_duration_hours,omitempty"`
	DriverShiftEnd        string   `json:"driver_shift_end,omitempty"`
	VehicleCapacity       *float64 `json:"vehicle_capacity,omitempty"`
	Notes                 string   `json:"notes,omitempty"`
}

// RouteRequest is a route submitted to the validation agent.
type RouteRequest struct {
	RouteID          string            `json:"route_id"`
	StartLocation    string            `json:"start_location"`
	PlannedStartTime string            `json:"planned_start_time"`
	VehicleID        string            `json:"vehicle_id,omitempty"`
	VehicleType      string            `json:"vehicle_type,omitempty"`
	StartLatitude    *float64          `json:"start_latitude,omitempty"`
	StartLongitude   *float64          `json:"start_longitude,omitempty"`
	Stops            []DeliveryStop    `json:"stops"`
	Constraints      *RouteConstraints `json:"constraints,omitempty"`
	Task             string            `json:"task,omitempty"`
}

// ToolCall records one tool the agent ran while validating.
type ToolCall struct {
	Tool          string                 `json:"tool"`
	Arguments     map[string]interface{} `json:"arguments"`
	OutputPreview string                 `json:"output_preview"`
}

// KnowledgeContext is one retrieved knowledge base passage.
type KnowledgeContext struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// RouteVerdict is the agent's assessment of a route.
type RouteVerdict struct {
	IsValid                 bool               `json:"is_valid"`
	Issues                  []string           `json:"issues"`
	Recommendations         []string           `json:"recommendations"`
	ActionPlan              []string           `json:"action_plan"`
	OptimizedStopOrder      []string           `json:"optimized_stop_order,omitempty"`
	Summary                 string             `json:"summary"`
	EstimatedDurationHours  *float64           `json:"estimated_duration_hours,omitempty"`
	EstimatedDistanceKm     *float64           `json:"estimated_distance_km,omitempty"`
	ToolCalls               []ToolCall         `json:"tool_calls"`
	RAGContexts             []KnowledgeContext `json:"rag_contexts"`
	UsedLLM                 bool               `json:"used_llm"`
}

// ValidateRoute runs the validation agent on a route.
func (c *Client) ValidateRoute(ctx context.Context, req *RouteRequest) (*RouteVerdict, error) {
	var out RouteVerdict
	if err := c.do(ctx, http.MethodPost, "/ai/validate-route", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatAnswer is the chat agent's reply.
type ChatAnswer struct {
	Answer      string             `json:"answer"`
	AnswerHTML  string             `json:"answer_html"`
	ToolCalls   []ToolCall         `json:"tool_calls"`
	RAGContexts []KnowledgeContext `json:"rag_contexts"`
}

// Chat asks the logistics chat agent a free-form question.
func (c *Client) Chat(ctx context.Context, question string) (*ChatAnswer, error) {
	var out ChatAnswer
	err := c.do(ctx, http.MethodPost, "/ai/chat", nil, map[string]string{"question": question}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Search queries the knowledge base directly.
func (c *Client) Search(ctx context.Context, query string, k int) ([]KnowledgeContext, error) {
	values := url.Values{"query": {query}}
	if k > 0 {
		values.Set("k", strconv.Itoa(k))
	}
	var out struct {
		Results []KnowledgeContext `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/ai/search", values, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Generated is the LLM proxy's response.
type Generated struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Generate proxies a prompt to the backend's LLM provider.
func (c *Client) Generate(ctx context.Context, prompt string) (*Generated, error) {
	var out Generated
	err := c.do(ctx, http.MethodPost, "/gemini/generate", nil, map[string]string{"prompt": prompt}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GeocodeResult is a resolved place for a coordinate pair.
type GeocodeResult struct {
	PlaceName   string             `json:"place_name"`
	City        string             `json:"city,omitempty"`
	Region      string             `json:"region,omitempty"`
	Country     string             `json:"country,omitempty"`
	Formatted   string             `json:"formatted"`
	Coordinates map[string]float64 `json:"coordinates"`
}

// ReverseGeocode resolves coordinates to a readable location.
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*GeocodeResult, error) {
	var out GeocodeResult
	err := c.do(ctx, http.MethodPost, "/geocoding/reverse", nil, map[string]float64{
		"latitude":  latitude,
		"longitude": longitude,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
