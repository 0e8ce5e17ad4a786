package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"costa-assist/internal/config"
	"costa-assist/internal/metrics"
)

// OllamaClient talks to an Ollama server, either through its native API or
// through the OpenAI-compatible /v1 endpoints
type OllamaClient struct {
	config      *config.OllamaConfig
	httpClient  *http.Client
	openAIStyle bool
	chunkParser StreamChunkParser
}

// NewOllamaClient creates a new client, picking the wire format from the base URL
func NewOllamaClient(cfg *config.OllamaConfig) *OllamaClient {
	openAIStyle := IsOpenAICompatible(cfg.BaseURL)

	var parser StreamChunkParser = &OllamaStreamChunkParser{}
	if openAIStyle {
		parser = &OpenAIStreamChunkParser{}
		log.Info().Str("base_url", cfg.BaseURL).Msg("🔧 Using OpenAI-compatible chat format")
	} else {
		log.Info().Str("base_url", cfg.BaseURL).Msg("🔧 Using native Ollama chat format")
	}

	return &OllamaClient{
		config:      cfg,
		openAIStyle: openAIStyle,
		chunkParser: parser,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OllamaClient) IsEnabled() bool {
	return c.config.Enabled && c.config.BaseURL != ""
}

// ollamaChatRequest is the native /api/chat request body
type ollamaChatRequest struct {
	Model     string         `json:"model"`
	Messages  []ChatMessage  `json:"messages"`
	Stream    bool           `json:"stream"`
	Format    string         `json:"format,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
	KeepAlive string         `json:"keep_alive,omitempty"`
}

// ollamaChatResponse is the native non-streaming /api/chat response
type ollamaChatResponse struct {
	Model           string      `json:"model"`
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// openAIChatRequest is the /v1/chat/completions request body
type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// openAIChatResponse is the /v1/chat/completions response
type openAIChatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ollamaEmbedRequest is the /api/embed request body
type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ollamaEmbedResponse is the /api/embed response body
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// openAIEmbedResponse is the /v1/embeddings response body
type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Chat performs a non-streaming chat request and returns the assistant message
func (c *OllamaClient) Chat(ctx context.Context, messages []ChatMessage) (content string, err error) {
	if !c.IsEnabled() {
		return "", ErrLLMDisabled
	}

	start := time.Now()
	defer func() { metrics.RecordLLMCall("chat", err, time.Since(start)) }()

	path, body := c.chatBody(messages, false)
	respBody, err := c.post(ctx, path, body, "application/json")
	if err != nil {
		return "", err
	}
	defer respBody.Close()

	raw, err := io.ReadAll(respBody)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if c.openAIStyle {
		var result openAIChatResponse
		if err := json.Unmarshal(raw, &result); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if len(result.Choices) == 0 {
			return "", errors.New("no choices in chat response")
		}
		log.Debug().
			Int("prompt_tokens", result.Usage.PromptTokens).
			Int("completion_tokens", result.Usage.CompletionTokens).
			Msg("chat completion")
		return result.Choices[0].Message.Content, nil
	}

	var result ollamaChatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	log.Debug().
		Str("model", result.Model).
		Int("prompt_tokens", result.PromptEvalCount).
		Int("completion_tokens", result.EvalCount).
		Msg("chat completion")

	return result.Message.Content, nil
}

// ChatStream performs a streaming chat request. Native Ollama streams NDJSON
// lines; the OpenAI-compatible API streams "data: " SSE lines ending in
// "[DONE]". Both are accepted regardless of the configured style.
func (c *OllamaClient) ChatStream(ctx context.Context, messages []ChatMessage, callback StreamCallback) (content string, err error) {
	if !c.IsEnabled() {
		return "", ErrLLMDisabled
	}

	start := time.Now()
	defer func() { metrics.RecordLLMCall("stream", err, time.Since(start)) }()

	path, body := c.chatBody(messages, true)
	respBody, err := c.post(ctx, path, body, "text/event-stream, application/x-ndjson")
	if err != nil {
		return "", err
	}
	defer respBody.Close()

	var full strings.Builder
	chunkCount := 0

	reader := bufio.NewReader(respBody)
	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return full.String(), fmt.Errorf("failed to read stream: %w", readErr)
		}

		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			if bytes.HasPrefix(line, []byte("data:")) {
				line = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
			}
			if bytes.Equal(line, []byte("[DONE]")) {
				break
			}

			chunk, err := c.chunkParser.ParseChunk(line)
			if err != nil {
				var se *streamError
				if errors.As(err, &se) {
					return full.String(), err
				}
				log.Warn().Err(err).Msg("Failed to parse stream chunk")
				continue
			}

			chunkCount++
			full.WriteString(chunk.Content)

			if err := callback(chunk); err != nil {
				return full.String(), fmt.Errorf("callback error: %w", err)
			}
			if chunk.Done {
				break
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	log.Debug().Int("chunks", chunkCount).Int("chars", full.Len()).Msg("🎉 Streaming completed")
	return full.String(), nil
}

// Embed returns the embedding of text using the configured embedding model
func (c *OllamaClient) Embed(ctx context.Context, text string) (vec []float32, err error) {
	if !c.IsEnabled() {
		return nil, ErrLLMDisabled
	}

	start := time.Now()
	defer func() { metrics.RecordLLMCall("embed", err, time.Since(start)) }()

	path := "/api/embed"
	if c.openAIStyle {
		path = "/embeddings"
	}

	respBody, err := c.post(ctx, path, ollamaEmbedRequest{Model: c.config.EmbeddingModel, Input: text}, "application/json")
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	raw, err := io.ReadAll(respBody)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}

	if c.openAIStyle {
		var result openAIEmbedResponse
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("parse embed response: %w", err)
		}
		if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
			return nil, errors.New("embed service returned empty vector")
		}
		return result.Data[0].Embedding, nil
	}

	var result ollamaEmbedResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, errors.New("embed service returned empty vector")
	}

	return result.Embeddings[0], nil
}

// chatBody builds the request path and body for the configured API style
func (c *OllamaClient) chatBody(messages []ChatMessage, stream bool) (string, any) {
	if c.openAIStyle {
		req := openAIChatRequest{
			Model:       c.config.ChatModel,
			Messages:    messages,
			Temperature: c.config.Temperature,
			TopP:        c.config.TopP,
			MaxTokens:   c.config.NumPredict,
			Stream:      stream,
		}
		if !stream {
			req.ResponseFormat = &responseFormat{Type: "json_object"}
		}
		return "/chat/completions", req
	}

	req := ollamaChatRequest{
		Model:     c.config.ChatModel,
		Messages:  messages,
		Stream:    stream,
		KeepAlive: c.config.KeepAlive,
		Options:   map[string]any{},
	}
	if !stream {
		req.Format = "json"
	}
	if c.config.Temperature > 0 {
		req.Options["temperature"] = c.config.Temperature
	}
	if c.config.TopP > 0 {
		req.Options["top_p"] = c.config.TopP
	}
	if c.config.NumPredict > 0 {
		req.Options["num_predict"] = c.config.NumPredict
	}
	return "/api/chat", req
}

// post sends a JSON body and returns the response body on HTTP 200. The
// caller closes the returned body.
func (c *OllamaClient) post(ctx context.Context, path string, body any, accept string) (io.ReadCloser, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(msg))
	}

	return resp.Body, nil
}
