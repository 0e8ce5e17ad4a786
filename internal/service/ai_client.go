package service

import (
	"context"
	"errors"
)

// ErrLLMDisabled is returned by LLM clients that are switched off in config
var ErrLLMDisabled = errors.New("llm is not enabled")

// LLMClient is the interface for chat model providers
type LLMClient interface {
	// Chat sends the conversation and returns the full assistant message
	Chat(ctx context.Context, messages []ChatMessage) (string, error)

	// ChatStream sends the conversation and calls callback for every chunk.
	// It returns the concatenated content once the stream ends.
	ChatStream(ctx context.Context, messages []ChatMessage, callback StreamCallback) (string, error)

	// Embed returns the embedding vector for text
	Embed(ctx context.Context, text string) ([]float32, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content
	Content string

	// Reasoning content emitted by thinking models
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// Ensure OllamaClient implements LLMClient
var _ LLMClient = (*OllamaClient)(nil)
