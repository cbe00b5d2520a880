package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"smart-diet-planner/internal/apperr"
	"smart-diet-planner/internal/mealplan"
	"smart-diet-planner/internal/planner"

	"github.com/google/uuid"
)

// GeneratePlanPath is the plan generation endpoint of the HTTP API.
const GeneratePlanPath = "/api/generate-plan"

// APIError is a non-2xx answer of the HTTP API.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Details extracts the most specific diagnostic from err: the server's
// details, then its error message, then the raw error text.
func Details(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Details != "" {
			return apiErr.Details
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		if appErr.Detail != "" {
			return appErr.Detail
		}
		return appErr.Message
	}
	return err.Error()
}

// APIClient submits constraints to the HTTP API.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient creates a client for the API at baseURL. token is sent as a
// bearer token when not empty. No timeout is set on outbound calls.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Submit implements Submitter.
func (a *APIClient) Submit(ctx context.Context, c mealplan.Constraints) (mealplan.MealPlan, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal constraints: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+GeneratePlanPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var b apperr.Body
		if json.Unmarshal(raw, &b) == nil && b.Error != "" {
			apiErr.Message = b.Error
			apiErr.Details = b.Details
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	var plan mealplan.MealPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan: %w", err)
	}
	return plan, nil
}

// PlanGenerator is the in-process generation gateway.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, c mealplan.Constraints) (planner.PlanResult, error)
}

// LocalSubmitter submits to an in-process PlanGenerator.
type LocalSubmitter struct {
	Generator PlanGenerator
}

// Submit implements Submitter.
func (l LocalSubmitter) Submit(ctx context.Context, c mealplan.Constraints) (mealplan.MealPlan, error) {
	res, err := l.Generator.GeneratePlan(ctx, c)
	if err != nil {
		return nil, err
	}
	return res.Plan, nil
}
