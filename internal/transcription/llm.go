package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/v01gh7/rapidwhisper/internal/apperrors"
)

const defaultLLMTimeout = 130 * time.Second // z.ai/Anthropic-shape default

// LLMConfig parameterizes one provider's post-processing endpoint.
type LLMConfig struct {
	Provider Provider
	BaseURL  string // overrides the table default when non-empty (custom)
	Model    string
	APIKey   string
	Prompt   string // system prompt applied ahead of the user transcript
}

// LLMClient issues a chat-completions-shaped post-processing request in
// whichever wire shape the configured provider speaks.
type LLMClient struct {
	httpClient *http.Client
	cfg        LLMConfig
}

func NewLLMClient(cfg LLMConfig, httpClient *http.Client) (*LLMClient, error) {
	if _, err := Spec(cfg.Provider); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultLLMTimeout}
	}
	return &LLMClient{httpClient: httpClient, cfg: cfg}, nil
}

// PostProcess sends transcript through the configured LLM with cfg.Prompt as
// the system message and returns the transformed text.
func (c *LLMClient) PostProcess(ctx context.Context, transcript string) (string, error) {
	spec, err := Spec(c.cfg.Provider)
	if err != nil {
		return "", err
	}

	switch spec.LLMShape {
	case ShapeAnthropicMessage:
		return c.postAnthropic(ctx, spec, transcript)
	default:
		return c.postOpenAIChat(ctx, spec, transcript)
	}
}

func (c *LLMClient) postOpenAIChat(ctx context.Context, spec ProviderSpec, transcript string) (string, error) {
	baseURL := spec.BaseURL
	if c.cfg.BaseURL != "" {
		baseURL = c.cfg.BaseURL
	}

	messages := []map[string]string{}
	if c.cfg.Prompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": c.cfg.Prompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": transcript})

	payload := map[string]any{
		"model":    c.cfg.Model,
		"messages": messages,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(string(c.cfg.Provider), err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(string(c.cfg.Provider), resp, respBody)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", apperrors.Wrap(apperrors.KindAPIUnexpected, "decode chat completion response", err)
	}
	if len(result.Choices) == 0 {
		return "", apperrors.ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

func (c *LLMClient) postAnthropic(ctx context.Context, spec ProviderSpec, transcript string) (string, error) {
	baseURL := spec.BaseURL
	if c.cfg.BaseURL != "" {
		baseURL = c.cfg.BaseURL
	}

	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": transcript},
		},
		"max_tokens": 1024,
	}
	if c.cfg.Prompt != "" {
		payload["system"] = c.cfg.Prompt
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(string(c.cfg.Provider), err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(string(c.cfg.Provider), resp, respBody)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", apperrors.Wrap(apperrors.KindAPIUnexpected, "decode messages response", err)
	}
	if len(result.Content) == 0 {
		return "", apperrors.ErrEmptyResponse
	}
	return result.Content[0].Text, nil
}
