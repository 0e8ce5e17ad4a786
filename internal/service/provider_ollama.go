package service

import (
	"encoding/json"
)

// OllamaStreamChunkParser parses native Ollama /api/chat stream lines
type OllamaStreamChunkParser struct{}

// ParseChunk converts one NDJSON line of an Ollama chat stream to a StreamChunk
func (p *OllamaStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var raw struct {
		Message struct {
			Role     string `json:"role"`
			Content  string `json:"content"`
			Thinking string `json:"thinking,omitempty"`
		} `json:"message"`
		Done  bool   `json:"done"`
		Error string `json:"error,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Error != "" {
		return nil, &streamError{msg: raw.Error}
	}

	return &StreamChunk{
		Role:            raw.Message.Role,
		Content:         raw.Message.Content,
		ThinkingContent: raw.Message.Thinking,
		Done:            raw.Done,
	}, nil
}

// streamError is an error reported inside the stream by the server
type streamError struct{ msg string }

func (e *streamError) Error() string { return "stream error: " + e.msg }
