package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/v01gh7/rapidwhisper/internal/apperrors"
)

const defaultTranscribeTimeout = 30 * time.Second

// STTConfig parameterizes one provider's speech-to-text endpoint.
type STTConfig struct {
	Provider Provider
	BaseURL  string // overrides the table default when non-empty (custom)
	Model    string // overrides the table default when non-empty
	APIKey   string
}

// STTClient uploads a WAV file to a provider's audio-transcriptions endpoint
// and extracts the resulting text, following the OpenAI Audio
// Transcriptions request/response shape used by every supported provider
// except zai (which does not support transcription at all).
type STTClient struct {
	httpClient *http.Client
	cfg        STTConfig
}

// NewSTTClient constructs a client bound to one provider configuration.
func NewSTTClient(cfg STTConfig, httpClient *http.Client) (*STTClient, error) {
	spec, err := Spec(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if !spec.SupportsTranscription {
		return nil, apperrors.NotSupported("transcription")
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTranscribeTimeout}
	}
	return &STTClient{httpClient: httpClient, cfg: cfg}, nil
}

// Transcribe uploads wavPath and returns the provider's transcript text.
func (c *STTClient) Transcribe(ctx context.Context, wavPath string) (string, error) {
	spec, err := Spec(c.cfg.Provider)
	if err != nil {
		return "", err
	}

	baseURL := spec.BaseURL
	if c.cfg.BaseURL != "" {
		baseURL = c.cfg.BaseURL
	}
	model := spec.DefaultTranscribeModel
	if c.cfg.Model != "" {
		model = c.cfg.Model
	}

	file, err := os.Open(wavPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindAudioDevice, "open recording for upload", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("model", model); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
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
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", apperrors.Wrap(apperrors.KindAPIUnexpected, "decode transcription response", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", apperrors.ErrEmptyResponse
	}
	return result.Text, nil
}

// classifyHTTPError maps a non-2xx response to the transport error
// taxonomy, preferring the HTTP status code and falling back to a body
// substring match.
func classifyHTTPError(provider string, resp *http.Response, body []byte) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.APIAuthentication(provider)
	case http.StatusTooManyRequests:
		retryAfter := 0.0
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				retryAfter = secs
			}
		}
		return apperrors.APIRateLimit(provider, retryAfter)
	case http.StatusNotFound:
		return apperrors.NotFound("model")
	case http.StatusBadRequest:
		return apperrors.APIBadRequest(provider, string(body))
	}

	lower := strings.ToLower(string(body))
	switch {
	case strings.Contains(lower, "authentication") || strings.Contains(lower, "invalid api key"):
		return apperrors.APIAuthentication(provider)
	case strings.Contains(lower, "rate limit"):
		return apperrors.APIRateLimit(provider, 0)
	case strings.Contains(lower, "model") && strings.Contains(lower, "not found"):
		return apperrors.NotFound("model")
	default:
		return apperrors.APIUnexpected(provider, fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)))
	}
}

// classifyTransportError maps a low-level network/transport failure (no
// HTTP response at all) to the same error taxonomy.
func classifyTransportError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.APITimeout(provider, 0)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.APITimeout(provider, 0)
	}
	return apperrors.APIConnection(provider, err.Error())
}
