package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costa-assist/internal/config"
	"costa-assist/internal/model"
)

const rondaQuestion = "3 bed villa in Ronda under 300k"

var testChatConfig = config.ChatConfig{
	DefaultLocale:      "en",
	MaxListings:        2,
	SearchLimit:        10,
	CorrectionDistance: 0.2,
}

func rondaListings() []model.Listing {
	return []model.Listing{
		{ID: "A", Title: "Finca", PropertyType: "cottage", Town: "Arriate", Price: floatPtr(250000), Bedrooms: intPtr(3)},
		{ID: "B", Title: "Villa Sol", PropertyType: "villa", Town: "Ronda", Price: floatPtr(280000), Bedrooms: intPtr(4)},
		{ID: "C", Title: "Villa Luna", PropertyType: "villa", Town: "Ronda", Price: floatPtr(299000), Bedrooms: intPtr(3)},
	}
}

func waitChatLog(t *testing.T, store *fakeStore) *model.ChatLog {
	t.Helper()
	select {
	case entry := <-store.chats:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("chat was not logged")
		return nil
	}
}

func TestChatService_FallbackWithoutLLM(t *testing.T) {
	searcher := &fakeSearcher{listings: rondaListings()}
	store := newFakeStore()
	svc := NewChatService(searcher, &fakeLLM{enabled: false}, NewRanker(0.5, 0.3, 0.2), store, store, testChatConfig)

	resp, err := svc.Chat(context.Background(), &model.ChatRequest{Message: rondaQuestion, Locale: "es-ES", SessionID: "s1"})
	require.NoError(t, err)

	link := "/es/properties?propertyType=villa&location=Ronda&town=Ronda&maxPrice=300000&minBeds=3"
	assert.Equal(t, link, resp.Link)
	assert.Equal(t, "villas in Ronda under €300,000 with at least 3 bedrooms", resp.Summary)
	assert.Equal(t, "I found villas in Ronda under €300,000 with at least 3 bedrooms that match your request. Tap here to view them: "+link, resp.Reply)
	assert.NotEmpty(t, resp.ChatID)

	require.NotNil(t, resp.Region)
	assert.Equal(t, 1, resp.Region.ID)

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, 1, searcher.queries[0].RegionID)
	assert.Equal(t, "es", searcher.queries[0].Locale)
	assert.Equal(t, 10, searcher.queries[0].Limit)

	require.Len(t, resp.Listings, 2)
	assert.Equal(t, "C", resp.Listings[0].ID, "closest to the budget ranks first")
	assert.Equal(t, "B", resp.Listings[1].ID)

	entry := waitChatLog(t, store)
	assert.Equal(t, resp.ChatID, entry.ID)
	assert.Equal(t, "es", entry.Locale)
	assert.Equal(t, "s1", *entry.SessionID)
	assert.Equal(t, model.JSONArray{"C", "B"}, entry.ListingIDs)
	assert.Equal(t, 1, *entry.RegionID)
}

func TestChatService_LLMReply(t *testing.T) {
	llm := &fakeLLM{
		enabled:   true,
		reply:     "```json\n{\"reply\": \"Two villas in Ronda fit.\", \"suggestions\": [\"a\", \"b\", \"c\", \"d\"]}\n```",
		embedding: []float32{0.1, 0.2},
	}
	store := newFakeStore()
	store.similar = &model.Correction{Answer: "Always link the Ronda results page."}
	svc := NewChatService(&fakeSearcher{listings: rondaListings()}, llm, NewRanker(0.5, 0.3, 0.2), store, store, testChatConfig)

	resp, err := svc.Chat(context.Background(), &model.ChatRequest{Message: "Top 1 " + rondaQuestion})
	require.NoError(t, err)

	assert.Equal(t, "Two villas in Ronda fit.", resp.Reply)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Suggestions)
	require.Len(t, resp.Listings, 1, "limit from the question caps listings")

	prompt := llm.lastSystemPrompt()
	assert.Contains(t, prompt, "Answer in English")
	assert.Contains(t, prompt, "Villa Luna | Ronda | €299,000 | 3 bed")
	assert.Contains(t, prompt, "Always link the Ronda results page.")
	assert.Contains(t, prompt, `{"reply"`)
	assert.Equal(t, []float32{0.1, 0.2}, store.lastVector)

	waitChatLog(t, store)
}

func TestChatService_FallbackOnBadLLMOutput(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"LLM error", &fakeLLM{enabled: true, err: errors.New("connection refused")}},
		{"Not JSON", &fakeLLM{enabled: true, reply: "Sorry, I cannot help."}},
		{"Empty reply", &fakeLLM{enabled: true, reply: `{"reply": "  "}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewChatService(&fakeSearcher{}, tt.llm, NewRanker(0.5, 0.3, 0.2), nil, nil, testChatConfig)
			resp, err := svc.Chat(context.Background(), &model.ChatRequest{Message: "apartments in Nerja"})
			require.NoError(t, err)
			assert.Equal(t, "I found apartments in Nerja that match your request. Tap here to view them: /en/properties?propertyType=apartment&location=Nerja&town=Nerja", resp.Reply)
			assert.Empty(t, resp.Suggestions)
		})
	}
}

func TestChatService_PropertyAPIFailure(t *testing.T) {
	svc := NewChatService(&fakeSearcher{err: errors.New("timeout")}, nil, NewRanker(0.5, 0.3, 0.2), nil, nil, testChatConfig)

	resp, err := svc.Chat(context.Background(), &model.ChatRequest{Message: "cottages near Gaucín"})
	require.NoError(t, err)
	assert.Empty(t, resp.Listings)
	assert.Contains(t, resp.Reply, "I found cottages in Gaucín")
}

func TestChatService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewChatService(&fakeSearcher{err: context.Canceled}, nil, NewRanker(0.5, 0.3, 0.2), nil, nil, testChatConfig)
	_, err := svc.Chat(ctx, &model.ChatRequest{Message: rondaQuestion})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChatService_ChatStream(t *testing.T) {
	llm := &fakeLLM{enabled: true, tokens: []string{"Two ", "villas ", "found."}, embedErr: errors.New("no model")}
	store := newFakeStore()
	svc := NewChatService(&fakeSearcher{listings: rondaListings()}, llm, NewRanker(0.5, 0.3, 0.2), store, store, testChatConfig)

	var events []string
	var tokens string
	resp, err := svc.ChatStream(context.Background(), &model.ChatRequest{Message: rondaQuestion}, func(event string, data any) error {
		events = append(events, event)
		if event == "token" {
			tokens += fmt.Sprint(data.(map[string]any)["content"])
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"filters", "listings", "token", "token", "token", "reply"}, events)
	assert.Equal(t, "Two villas found.", tokens)
	assert.Equal(t, "Two villas found.", resp.Reply)
	assert.NotContains(t, llm.lastSystemPrompt(), `{"reply"`)

	waitChatLog(t, store)
}

func TestChatService_ChatStreamFallback(t *testing.T) {
	svc := NewChatService(nil, &fakeLLM{enabled: true, err: errors.New("boom")}, NewRanker(0.5, 0.3, 0.2), nil, nil, testChatConfig)

	var events []string
	resp, err := svc.ChatStream(context.Background(), &model.ChatRequest{Message: "hello"}, func(event string, data any) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"filters", "listings", "reply"}, events)
	assert.Equal(t, "I found properties that match your request. Tap here to view them: /en/properties", resp.Reply)
}

func TestChatService_ChatStreamResetsPartialReply(t *testing.T) {
	llm := &fakeLLM{enabled: true, tokens: []string{"Two ", "vil"}, streamErr: errors.New("connection reset")}
	svc := NewChatService(nil, llm, NewRanker(0.5, 0.3, 0.2), nil, nil, testChatConfig)

	var events []string
	var final string
	resp, err := svc.ChatStream(context.Background(), &model.ChatRequest{Message: "hello"}, func(event string, data any) error {
		events = append(events, event)
		if event == "reply" {
			final = fmt.Sprint(data.(map[string]any)["reply"])
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"filters", "listings", "token", "token", "reset", "reply"}, events)
	assert.Equal(t, "I found properties that match your request. Tap here to view them: /en/properties", final)
	assert.Equal(t, final, resp.Reply)
}

func TestChatService_Parse(t *testing.T) {
	svc := NewChatService(nil, nil, NewRanker(0.5, 0.3, 0.2), nil, nil, testChatConfig)

	resp := svc.Parse("apartments between 200k and 300k in Málaga", "de")
	assert.Equal(t, "/de/properties?propertyType=apartment&location=M%C3%A1laga&town=M%C3%A1laga&minPrice=200000&maxPrice=300000", resp.Link)
	assert.Equal(t, "apartments in Málaga between €200,000 and €300,000", resp.Summary)
	require.NotNil(t, resp.Region)
	assert.Equal(t, 42, resp.Region.ID)
}

func TestChatService_LogFeedback(t *testing.T) {
	store := newFakeStore()
	svc := NewChatService(nil, nil, NewRanker(0.5, 0.3, 0.2), store, nil, testChatConfig)

	require.NoError(t, svc.LogFeedback(context.Background(), &model.FeedbackRequest{ChatID: "c1", Rating: "up", Comment: "  "}))
	require.Len(t, store.feedback, 1)
	assert.Equal(t, "c1", store.feedback[0].ChatID)
	assert.Nil(t, store.feedback[0].Comment)

	noDB := NewChatService(nil, nil, NewRanker(0.5, 0.3, 0.2), nil, nil, testChatConfig)
	assert.Error(t, noDB.LogFeedback(context.Background(), &model.FeedbackRequest{ChatID: "c1", Rating: "down"}))
}
