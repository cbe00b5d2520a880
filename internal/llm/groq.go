package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smart-diet-planner/internal/config"
	"smart-diet-planner/internal/prompt"
	"smart-diet-planner/internal/shared"
)

const groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// envelopeKey wraps array schemas since JSON mode only returns objects.
const envelopeKey = "result"

// GroqClient is a client for the Groq API.
type GroqClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config) *GroqClient {
	return &GroqClient{
		apiKey: cfg.GroqAPIKey,
		model:  cfg.GroqModel,
		url:    groqAPIURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateJSON sends the prompt in JSON mode. The schema travels inside a
// system message and array results are unwrapped from their envelope.
func (c *GroqClient) GenerateJSON(ctx context.Context, p string, schema *prompt.Schema) (ContentResponse, error) {
	system, wrapped, err := schemaInstruction(schema)
	if err != nil {
		return ContentResponse{}, err
	}

	reqBody := groqRequest{
		Model: c.model,
		Messages: []groqMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: p},
		},
		Temperature:    0.3,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	usage := shared.TokenUsage{
		PromptTokens:     groqResp.Usage.PromptTokens,
		CompletionTokens: groqResp.Usage.CompletionTokens,
		TotalTokens:      groqResp.Usage.TotalTokens,
		Model:            c.model,
	}

	if len(groqResp.Choices) == 0 {
		return ContentResponse{Usage: usage}, fmt.Errorf("no content generated")
	}

	content := groqResp.Choices[0].Message.Content
	if wrapped {
		content, err = unwrapEnvelope(content)
		if err != nil {
			return ContentResponse{Usage: usage}, err
		}
	}

	return ContentResponse{Content: content, Usage: usage}, nil
}

// Close is a no-op; the HTTP client holds no dedicated resources.
func (c *GroqClient) Close() error {
	return nil
}

func schemaInstruction(schema *prompt.Schema) (string, bool, error) {
	if schema == nil {
		return "Respond with a single JSON object.", false, nil
	}

	target := schema
	wrapped := schema.Type != prompt.TypeObject
	if wrapped {
		target = &prompt.Schema{
			Type:       prompt.TypeObject,
			Properties: map[string]*prompt.Schema{envelopeKey: schema},
			Required:   []string{envelopeKey},
		}
	}

	raw, err := json.Marshal(target)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return fmt.Sprintf("Respond with a single JSON object that validates against this JSON Schema:\n%s", raw), wrapped, nil
}

func unwrapEnvelope(content string) (string, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return "", fmt.Errorf("failed to parse JSON envelope: %w", err)
	}
	inner, ok := env[envelopeKey]
	if !ok {
		return "", fmt.Errorf("JSON envelope has no %q field", envelopeKey)
	}
	return string(inner), nil
}
