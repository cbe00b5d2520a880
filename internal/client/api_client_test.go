package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-diet-planner/internal/apperr"
	"smart-diet-planner/internal/mealplan"
	"smart-diet-planner/internal/planner"
)

func TestAPIClient_Submit(t *testing.T) {
	var got mealplan.Constraints
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GeneratePlanPath, r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(onePlan())
	}))
	defer srv.Close()

	c := mealplan.DefaultConstraints()
	plan, err := NewAPIClient(srv.URL+"/", "secret-token").Submit(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, onePlan(), plan)
	assert.Equal(t, c, got)
}

func TestAPIClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails string
	}{
		{
			name:        "validation",
			status:      http.StatusBadRequest,
			body:        `{"error": "Missing required constraints: calorieTarget and dailyBudget."}`,
			wantMessage: apperr.MsgMissingConstraints,
		},
		{
			name:        "generation",
			status:      http.StatusInternalServerError,
			body:        `{"error": "Failed to generate meal plan from AI.", "details": "quota exceeded"}`,
			wantMessage: apperr.MsgGenerationFailed,
			wantDetails: "quota exceeded",
		},
		{
			name:        "proxy page",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAPIClient(srv.URL, "").Submit(context.Background(), mealplan.DefaultConstraints())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantDetails, apiErr.Details)
		})
	}
}

func TestDetails(t *testing.T) {
	assert.Equal(t, "quota", Details(&APIError{Message: "Failed", Details: "quota"}))
	assert.Equal(t, "Failed", Details(&APIError{Message: "Failed"}))
	assert.Equal(t, "bad json", Details(apperr.Generation(errors.New("bad json"))))
	assert.Equal(t, apperr.MsgMissingConstraints, Details(apperr.Validation(apperr.MsgMissingConstraints)))
	assert.Equal(t, "raw", Details(errors.New("raw")))
}

type fakeGenerator struct {
	res planner.PlanResult
	err error
}

func (f fakeGenerator) GeneratePlan(ctx context.Context, c mealplan.Constraints) (planner.PlanResult, error) {
	return f.res, f.err
}

func TestLocalSubmitter(t *testing.T) {
	plan, err := LocalSubmitter{Generator: fakeGenerator{res: planner.PlanResult{Plan: onePlan()}}}.
		Submit(context.Background(), mealplan.DefaultConstraints())
	require.NoError(t, err)
	assert.Equal(t, onePlan(), plan)

	_, err = LocalSubmitter{Generator: fakeGenerator{err: apperr.Generation(errors.New("timeout"))}}.
		Submit(context.Background(), mealplan.DefaultConstraints())
	assert.Equal(t, "timeout", Details(err))
}
