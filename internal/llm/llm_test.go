package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-diet-planner/internal/config"
	"smart-diet-planner/internal/prompt"
)

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(prompt.PlanSchema())

	require.Equal(t, genai.TypeArray, s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, genai.TypeObject, s.Items.Type)
	assert.Equal(t, []string{"day", "meals", "daily_total_cost_approx"}, s.Items.Required)

	meal := s.Items.Properties["meals"].Items
	require.NotNil(t, meal)
	assert.Equal(t, genai.TypeInteger, meal.Properties["calories_approx"].Type)
	assert.Equal(t, genai.TypeNumber, meal.Properties["budget_cost_approx"].Type)
	assert.Equal(t, "Name of the suggested regional dish.", meal.Properties["dish_name"].Description)
	assert.Nil(t, toGenaiSchema(nil))
}

func TestTextFromResponse(t *testing.T) {
	t.Run("joins text parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("[{"), genai.Text("}]")}},
			}},
			UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 120, CandidatesTokenCount: 900, TotalTokenCount: 1020},
		}

		text, err := textFromResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "[{}]", text)

		usage := usageFromResponse(resp, "gemini-2.5-flash")
		assert.Equal(t, 120, usage.PromptTokens)
		assert.Equal(t, 900, usage.CompletionTokens)
		assert.Equal(t, 1020, usage.TotalTokens)
		assert.Equal(t, "gemini-2.5-flash", usage.Model)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := textFromResponse(&genai.GenerateContentResponse{})
		assert.EqualError(t, err, "no content generated")
	})

	t.Run("missing usage", func(t *testing.T) {
		usage := usageFromResponse(nil, "m")
		assert.True(t, usage.IsZero())
	})
}

func TestGroqClient_GenerateJSON(t *testing.T) {
	var got groqRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer groq_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"result\": [{\"day\": 1}]}"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
		}`))
	}))
	defer srv.Close()

	client := NewGroqClient(&config.Config{GroqAPIKey: "groq_key", GroqModel: "llama-3.3-70b-versatile"})
	client.url = srv.URL

	resp, err := client.GenerateJSON(context.Background(), "make a plan", prompt.PlanSchema())
	require.NoError(t, err)

	assert.Equal(t, `[{"day": 1}]`, resp.Content)
	assert.Equal(t, 30, resp.Usage.TotalTokens)
	assert.Equal(t, "llama-3.3-70b-versatile", resp.Usage.Model)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.True(t, strings.Contains(got.Messages[0].Content, `"daily_total_cost_approx"`))
	assert.Equal(t, "make a plan", got.Messages[1].Content)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
}

func TestGroqClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGroqClient(&config.Config{GroqAPIKey: "k"})
	client.url = srv.URL

	_, err := client.GenerateJSON(context.Background(), "p", prompt.PlanSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")
}

func TestUnwrapEnvelope(t *testing.T) {
	_, err := unwrapEnvelope(`{"days": []}`)
	assert.Error(t, err)

	_, err = unwrapEnvelope(`not json`)
	assert.Error(t, err)
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New(context.Background(), &config.Config{LLMProvider: "openai"})
	assert.EqualError(t, err, `unsupported LLM provider "openai"`)

	gen, err := New(context.Background(), &config.Config{LLMProvider: config.ProviderGroq})
	require.NoError(t, err)
	assert.IsType(t, &GroqClient{}, gen)
}
