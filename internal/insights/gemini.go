package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mktintel/internal/config"
	"mktintel/pkg/contracts/domain"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Provider answers free-form questions about a summary snapshot.
type Provider interface {
	Ask(ctx context.Context, question string, stats domain.SummaryStats) (string, error)
	Enabled() bool
}

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewGeminiClient builds a client from config. With no API key the client is
// disabled and the caller falls back to the rule-based engine.
func NewGeminiClient(cfg config.InsightsConfig, logger *slog.Logger) *GeminiClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{
		apiKey:      cfg.APIKey(),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		baseURL:     geminiBaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger.With(slog.String("component", "gemini_client")),
	}
}

// Enabled reports whether an API key is configured.
func (c *GeminiClient) Enabled() bool { return c.apiKey != "" }

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Ask sends the analyst prompt and returns the model's answer. The call is
// bounded by the configured timeout on top of whatever deadline ctx carries,
// so a slow provider can never stall the dashboard.
func (c *GeminiClient) Ask(ctx context.Context, question string, stats domain.SummaryStats) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("gemini provider is not configured")
	}

	prompt, err := buildChatPrompt(question, stats)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	c.logger.Info("gemini answer generated",
		slog.String("model", c.model),
		slog.Duration("elapsed", time.Since(start)))
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
