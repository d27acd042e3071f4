package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/gramseva/sahayak/pkg/logging"
)

// GeminiConfig holds generation parameters and retry policy for the Gemini
// backed LLM client.
type GeminiConfig struct {
	APIKey          string
	ModelID         string
	Timeout         time.Duration
	MaxRetries      int
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// GeminiLLMClient implements LLMClient using Google's Gemini API.
type GeminiLLMClient struct {
	client *genai.Client
	cfg    GeminiConfig
	logger *logging.Logger
}

// NewGeminiLLMClient creates a new Gemini LLM client.
func NewGeminiLLMClient(ctx context.Context, cfg GeminiConfig, logger *logging.Logger) (*GeminiLLMClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("conversation: gemini api key is required")
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = logging.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create gemini client: %w", err)
	}

	return &GeminiLLMClient{client: client, cfg: cfg, logger: logger}, nil
}

// Generate sends the prompt plus replayed history to Gemini with the shared
// tool schema attached. Server-side failures (5xx) are retried with
// exponential backoff (1s, 2s, 4s); anything else fails immediately.
func (c *GeminiLLMClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	model := c.client.GenerativeModel(c.cfg.ModelID)
	model.SetTemperature(c.cfg.Temperature)
	if c.cfg.TopP > 0 {
		model.SetTopP(c.cfg.TopP)
	}
	if c.cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.cfg.MaxOutputTokens)
	}
	model.Tools = assistantTools

	cs := model.StartChat()
	cs.History = historyToContents(req.History)

	var resp *genai.GenerateContentResponse
	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		var err error
		resp, err = cs.SendMessage(callCtx, genai.Text(req.Prompt))
		cancel()
		if err == nil {
			break
		}
		if attempt >= c.cfg.MaxRetries || !isRetryable(err) {
			return GenerateResult{}, fmt.Errorf("conversation: gemini generate failed: %w", err)
		}

		delay := time.Duration(1<<attempt) * time.Second
		c.logger.Warn("gemini call failed, retrying", "attempt", attempt+1, "delay", delay.String(), "error", err)
		select {
		case <-ctx.Done():
			return GenerateResult{}, fmt.Errorf("conversation: gemini generate canceled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	if len(resp.Candidates) == 0 {
		return GenerateResult{}, errors.New("conversation: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return GenerateResult{}, errors.New("conversation: gemini returned empty content")
	}

	var result GenerateResult
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			if result.FunctionCall == nil {
				result.FunctionCall = &FunctionCall{Name: p.Name, Args: p.Args}
			}
		}
	}
	result.Text = strings.TrimSpace(text.String())
	return result, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiLLMClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// isRetryable reports whether the error is a transient server-side failure.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500 && apiErr.Code < 600
	}
	return false
}

// historyToContents converts stored turns into the SDK's content form. Text,
// function-call, and function-result turns all survive the round trip so the
// model sees the same dialogue the store recorded.
func historyToContents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		var parts []genai.Part
		switch {
		case turn.FunctionCall != nil:
			parts = append(parts, genai.FunctionCall{Name: turn.FunctionCall.Name, Args: turn.FunctionCall.Args})
		case turn.FunctionResponse != nil:
			parts = append(parts, genai.FunctionResponse{
				Name:     turn.FunctionResponse.Name,
				Response: decodeResponseMap(turn.FunctionResponse.Response),
			})
		case turn.Text != "":
			parts = append(parts, genai.Text(turn.Text))
		default:
			continue
		}
		contents = append(contents, &genai.Content{Role: turn.Role, Parts: parts})
	}
	return contents
}

func decodeResponseMap(raw []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]any{"raw": string(raw)}
	}
	return m
}
