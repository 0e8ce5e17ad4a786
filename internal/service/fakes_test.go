package service

import (
	"context"
	"sync"

	"costa-assist/internal/model"
)

type fakeLLM struct {
	enabled   bool
	reply     string
	err       error
	tokens    []string
	streamErr error
	embedding []float32
	embedErr  error

	mu       sync.Mutex
	messages [][]ChatMessage
}

func (f *fakeLLM) Chat(_ context.Context, messages []ChatMessage) (string, error) {
	f.record(messages)
	return f.reply, f.err
}

func (f *fakeLLM) ChatStream(_ context.Context, messages []ChatMessage, callback StreamCallback) (string, error) {
	f.record(messages)
	if f.err != nil {
		return "", f.err
	}
	var full string
	for _, tok := range f.tokens {
		full += tok
		if err := callback(&StreamChunk{Role: "assistant", Content: tok}); err != nil {
			return full, err
		}
	}
	if f.streamErr != nil {
		return full, f.streamErr
	}
	return full, nil
}

func (f *fakeLLM) Embed(context.Context, string) ([]float32, error) {
	return f.embedding, f.embedErr
}

func (f *fakeLLM) IsEnabled() bool { return f.enabled }

func (f *fakeLLM) record(messages []ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, messages)
}

func (f *fakeLLM) lastSystemPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1][0].Content
}

type fakeSearcher struct {
	listings []model.Listing
	err      error
	queries  []SearchQuery
}

func (f *fakeSearcher) Search(_ context.Context, q SearchQuery) (*model.PropertySearchResponse, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return &model.PropertySearchResponse{Results: f.listings, Total: len(f.listings)}, nil
}

type fakeStore struct {
	chats       chan *model.ChatLog
	corrections chan *model.Correction
	feedback    []*model.Feedback
	similar     *model.Correction
	lastVector  []float32
	lastLimit   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chats:       make(chan *model.ChatLog, 4),
		corrections: make(chan *model.Correction, 4),
	}
}

func (f *fakeStore) LogChat(_ context.Context, entry *model.ChatLog) error {
	f.chats <- entry
	return nil
}

func (f *fakeStore) LogFeedback(_ context.Context, fb *model.Feedback) error {
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeStore) LogCorrection(_ context.Context, c *model.Correction) error {
	f.corrections <- c
	return nil
}

func (f *fakeStore) RecentCorrections(_ context.Context, limit int) ([]model.Correction, error) {
	f.lastLimit = limit
	return []model.Correction{{ID: "c1", Question: "villas in Ronda"}}, nil
}

func (f *fakeStore) FindSimilarCorrection(_ context.Context, embedding []float32, _ float64) (*model.Correction, error) {
	f.lastVector = embedding
	return f.similar, nil
}
