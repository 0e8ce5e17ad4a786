package service

import (
	"encoding/json"
	"strings"
)

// OpenAIStreamChunkParser parses OpenAI-format streaming chunks, which Ollama
// serves under /v1
type OpenAIStreamChunkParser struct{}

// ParseChunk converts an OpenAI chunk to a StreamChunk
func (p *OpenAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role             string  `json:"role,omitempty"`
				Content          string  `json:"content,omitempty"`
				ReasoningContent *string `json:"reasoning_content,omitempty"`
				Reasoning        *string `json:"reasoning,omitempty"`
			} `json:"delta"`
			FinishReason string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}

	if len(rawChunk.Choices) > 0 {
		delta := rawChunk.Choices[0].Delta
		chunk.Role = delta.Role
		chunk.Content = delta.Content

		switch {
		case delta.ReasoningContent != nil:
			chunk.ThinkingContent = *delta.ReasoningContent
		case delta.Reasoning != nil:
			chunk.ThinkingContent = *delta.Reasoning
		}

		chunk.Done = rawChunk.Choices[0].FinishReason != ""
	}

	return chunk, nil
}

// IsOpenAICompatible reports whether baseURL points at an OpenAI-style API
// (".../v1") rather than the native Ollama API
func IsOpenAICompatible(baseURL string) bool {
	return strings.HasSuffix(strings.TrimRight(baseURL, "/"), "/v1")
}
