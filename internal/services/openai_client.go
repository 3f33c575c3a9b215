package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/studykite/studykite-backend/internal/logger"
)

type TokenUsage struct {
  InputTokens  int `json:"input_tokens"`
  OutputTokens int `json:"output_tokens"`
}

type OpenAIClient interface {
  GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, TokenUsage, error)
  Speak(ctx context.Context, text string, voice string) ([]byte, error)
  CreateRealtimeSession(ctx context.Context, instructions string, voice string) (map[string]any, error)
}

type openAIClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  ttsModel   string
  httpClient *http.Client

  maxRetries int
}

func NewOpenAIClient(log *logger.Logger) (OpenAIClient, error) {
  apiKey := os.Getenv("OPENAI_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }

  baseURL := os.Getenv("OPENAI_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.openai.com"
  }

  model := os.Getenv("OPENAI_MODEL")
  if model == "" {
    model = "gpt-4o"
  }

  ttsModel := os.Getenv("OPENAI_TTS_MODEL")
  if ttsModel == "" {
    ttsModel = "tts-1"
  }

  // generation calls routinely run long; timeout must cover them
  timeoutSec := 180
  if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  maxRetries := 4
  if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
      maxRetries = parsed
    }
  }

  return &openAIClient{
    log:        log.With("service", "OpenAIClient"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    model:      model,
    ttsModel:   ttsModel,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    maxRetries: maxRetries,
  }, nil
}

type openAIHTTPError struct {
  StatusCode int
  Body       string
}

func (e *openAIHTTPError) Error() string {
  return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
  if code == 408 || code == 429 {
    return true
  }
  return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) {
    return true
  }
  var netErr net.Error
  if errors.As(err, &netErr) {
    if netErr.Timeout() {
      return true
    }
  }
  var httpErr *openAIHTTPError
  if errors.As(err, &httpErr) {
    return isRetryableHTTP(httpErr.StatusCode)
  }
  return false
}

func jitterSleep(base time.Duration) time.Duration {
  // +/- 20%
  if base <= 0 {
    return 0
  }
  delta := base.Seconds() * 0.2
  low := base.Seconds() - delta
  high := base.Seconds() + delta
  if low < 0 {
    low = 0
  }
  v := low + rand.Float64()*(high-low)
  return time.Duration(v * float64(time.Second))
}

func (c *openAIClient) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return raw, nil
}

// do retries transient failures with exponential backoff: 1s, 2s, 4s, 8s.
func (c *openAIClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
  backoff := 1 * time.Second

  for attempt := 0; ; attempt++ {
    if ctx.Err() != nil {
      return nil, ctx.Err()
    }

    raw, err := c.doOnce(ctx, method, path, body)
    if err == nil {
      return raw, nil
    }
    if !isRetryableErr(err) || attempt == c.maxRetries {
      return nil, err
    }

    c.log.Warn("openai call failed, retrying", "path", path, "attempt", attempt+1, "error", err)
    select {
    case <-ctx.Done():
      return nil, ctx.Err()
    case <-time.After(jitterSleep(backoff)):
    }
    backoff *= 2
    if backoff > 10*time.Second {
      backoff = 10 * time.Second
    }
  }
}

type responsesRequest struct {
  Model string `json:"model"`
  Input []struct {
    Role    string `json:"role"`
    Content string `json:"content"`
  } `json:"input"`
  Temperature float64 `json:"temperature"`
  Text        struct {
    Format map[string]any `json:"format"`
  } `json:"text"`
}

type responsesResponse struct {
  Output []struct {
    Type    string `json:"type"`
    Role    string `json:"role,omitempty"`
    Content []struct {
      Type string `json:"type"`
      Text string `json:"text,omitempty"`
    } `json:"content,omitempty"`
  } `json:"output"`
  Usage struct {
    InputTokens  int `json:"input_tokens"`
    OutputTokens int `json:"output_tokens"`
  } `json:"usage"`
  Refusal string `json:"refusal,omitempty"`
}

func (c *openAIClient) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, TokenUsage, error) {
  if schemaName == "" {
    return nil, TokenUsage{}, errors.New("schemaName required")
  }
  if schema == nil {
    return nil, TokenUsage{}, errors.New("schema required")
  }

  req := responsesRequest{
    Model: c.model,
    Input: []struct {
      Role    string `json:"role"`
      Content string `json:"content"`
    }{
      {Role: "system", Content: system},
      {Role: "user", Content: user},
    },
    Temperature: 0.2,
  }
  req.Text.Format = map[string]any{
    "type":   "json_schema",
    "name":   schemaName,
    "schema": schema,
    "strict": true,
  }

  raw, err := c.do(ctx, "POST", "/v1/responses", req)
  if err != nil {
    return nil, TokenUsage{}, err
  }

  var resp responsesResponse
  if err := json.Unmarshal(raw, &resp); err != nil {
    return nil, TokenUsage{}, fmt.Errorf("openai decode error: %w; raw=%s", err, string(raw))
  }
  if resp.Refusal != "" {
    return nil, TokenUsage{}, fmt.Errorf("model refused: %s", resp.Refusal)
  }

  var jsonText string
  for _, item := range resp.Output {
    if item.Type == "message" && item.Role == "assistant" {
      for _, part := range item.Content {
        if part.Type == "output_text" && part.Text != "" {
          jsonText += part.Text
        }
      }
    }
  }
  if jsonText == "" {
    return nil, TokenUsage{}, fmt.Errorf("no output_text found in response")
  }

  var obj map[string]any
  if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
    return nil, TokenUsage{}, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, jsonText)
  }
  usage := TokenUsage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
  return obj, usage, nil
}

// Speak synthesizes one block of text and returns WAV bytes.
func (c *openAIClient) Speak(ctx context.Context, text string, voice string) ([]byte, error) {
  if strings.TrimSpace(text) == "" {
    return nil, errors.New("text required")
  }
  if voice == "" {
    voice = "echo"
  }
  body := map[string]any{
    "model":           c.ttsModel,
    "input":           text,
    "voice":           voice,
    "response_format": "wav",
  }
  return c.do(ctx, "POST", "/v1/audio/speech", body)
}

// CreateRealtimeSession mints an ephemeral realtime session scoped by tutor
// instructions. The response JSON is handed to the browser unchanged.
func (c *openAIClient) CreateRealtimeSession(ctx context.Context, instructions string, voice string) (map[string]any, error) {
  if voice == "" {
    voice = "echo"
  }
  model := os.Getenv("OPENAI_REALTIME_MODEL")
  if model == "" {
    model = "gpt-4o-realtime-preview-2024-12-17"
  }
  raw, err := c.do(ctx, "POST", "/v1/realtime/sessions", map[string]any{
    "model":        model,
    "instructions": instructions,
    "voice":        voice,
  })
  if err != nil {
    return nil, err
  }
  var out map[string]any
  if err := json.Unmarshal(raw, &out); err != nil {
    return nil, fmt.Errorf("realtime session decode: %w", err)
  }
  return out, nil
}
