package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"costa-assist/internal/config"
	"costa-assist/internal/metrics"
	"costa-assist/internal/model"
	"costa-assist/internal/parser"
	"costa-assist/internal/utils"
)

// ChatService answers chat widget messages
type ChatService struct {
	properties  PropertySearcher
	llm         LLMClient
	ranker      *Ranker
	chats       ChatStore
	corrections CorrectionStore
	cfg         config.ChatConfig
}

// NewChatService creates a new chat service. chats and corrections may be
// nil when no database is configured.
func NewChatService(
	properties PropertySearcher,
	llm LLMClient,
	ranker *Ranker,
	chats ChatStore,
	corrections CorrectionStore,
	cfg config.ChatConfig,
) *ChatService {
	return &ChatService{
		properties:  properties,
		llm:         llm,
		ranker:      ranker,
		chats:       chats,
		corrections: corrections,
		cfg:         cfg,
	}
}

// ChatEventCallback is called for streaming chat events
type ChatEventCallback func(event string, data any) error

// llmReply is the JSON shape the LLM is asked to answer in
type llmReply struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions"`
}

// turn holds everything derived from a message before the LLM is asked
type turn struct {
	chatID   string
	locale   string
	message  string
	filters  *model.ParsedFilters
	region   *model.Region
	link     string
	summary  string
	listings []model.RankedListing
	guidance *model.Correction
}

// Parse extracts filters from a question and derives the link, summary and
// region without calling any backend
func (s *ChatService) Parse(question, locale string) *model.ParseResponse {
	locale = s.locale(locale)
	filters := parser.ExtractFilters(question)
	metrics.RecordParsedFilters(filters)

	resp := &model.ParseResponse{
		Filters: filters,
		Link:    parser.BuildLink(filters, locale),
		Summary: parser.BuildSummary(filters),
	}
	if region, ok := parser.ResolveRegion(question); ok {
		resp.Region = &region
	}
	return resp
}

// Chat runs the full pipeline and returns the reply
func (s *ChatService) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	startTime := time.Now()

	t, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	reply := s.ask(ctx, t)

	resp := s.response(t, reply, time.Since(startTime).Milliseconds())
	s.logChat(req, resp)
	return resp, nil
}

// ChatStream runs the pipeline, reporting progress and reply tokens through
// callback. Events: filters, listings, token, reset, reply. reset is sent when
// the LLM fails after tokens went out; clients drop those tokens and show the
// reply event's text instead.
func (s *ChatService) ChatStream(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	startTime := time.Now()

	t, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := callback("filters", map[string]any{
		"chatId":  t.chatID,
		"filters": t.filters,
		"region":  t.region,
		"link":    t.link,
		"summary": t.summary,
	}); err != nil {
		return nil, err
	}

	if err := callback("listings", t.listings); err != nil {
		return nil, err
	}

	reply := llmReply{}
	if s.llm != nil && s.llm.IsEnabled() {
		messages := buildMessages(t.message, t.locale, t.filters, t.region, t.link, t.summary, t.listings, t.guidance, false)
		tokensSent := 0
		content, err := s.llm.ChatStream(ctx, messages, func(chunk *StreamChunk) error {
			if chunk.Content == "" {
				return nil
			}
			tokensSent++
			return callback("token", map[string]any{"content": chunk.Content})
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("chat_id", t.chatID).Int("tokens_sent", tokensSent).Msg("LLM stream failed, using composed answer")
			if tokensSent > 0 {
				if err := callback("reset", map[string]any{"reason": "llm_failed"}); err != nil {
					return nil, err
				}
			}
		} else {
			reply.Reply = strings.TrimSpace(content)
		}
	}
	if reply.Reply == "" {
		reply.Reply = s.fallback(t)
	}

	resp := s.response(t, reply, time.Since(startTime).Milliseconds())
	if err := callback("reply", map[string]any{
		"reply":       resp.Reply,
		"suggestions": resp.Suggestions,
		"took_ms":     resp.Took,
	}); err != nil {
		return nil, err
	}

	s.logChat(req, resp)
	return resp, nil
}

// prepare parses the message, searches the property API and looks up a
// similar past correction
func (s *ChatService) prepare(ctx context.Context, req *model.ChatRequest) (*turn, error) {
	t := &turn{
		chatID:  uuid.NewString(),
		locale:  s.locale(req.Locale),
		message: parser.NormalizeWhitespace(req.Message),
	}

	t.filters = parser.ParseQuestion(t.message)
	metrics.RecordParsedFilters(t.filters)

	if region, ok := parser.ResolveRegion(t.message); ok {
		t.region = &region
	}
	t.link = parser.BuildLink(t.filters, t.locale)
	t.summary = parser.BuildSummary(t.filters)

	listings, err := s.search(ctx, t)
	if err != nil {
		return nil, err
	}
	t.listings = listings
	t.guidance = s.findGuidance(ctx, t.message)

	return t, nil
}

// search queries the property API and keeps the best listings. API failures
// leave the turn without listings; only cancellation is returned.
func (s *ChatService) search(ctx context.Context, t *turn) ([]model.RankedListing, error) {
	if s.properties == nil {
		return []model.RankedListing{}, nil
	}

	q := SearchQuery{Filters: t.filters, Locale: t.locale, Limit: s.cfg.SearchLimit}
	if t.region != nil {
		q.RegionID = t.region.ID
	}

	result, err := s.properties.Search(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("chat_id", t.chatID).Msg("Property search failed")
		return []model.RankedListing{}, nil
	}

	ranked := s.ranker.RankListings(result.Results, t.filters)

	keep := s.cfg.MaxListings
	if t.filters.Limit != nil && *t.filters.Limit > 0 && *t.filters.Limit < keep {
		keep = *t.filters.Limit
	}
	if len(ranked) > keep {
		ranked = ranked[:keep]
	}
	return ranked, nil
}

// findGuidance returns the closest stored correction, if any is close enough
func (s *ChatService) findGuidance(ctx context.Context, message string) *model.Correction {
	if s.corrections == nil || s.llm == nil || !s.llm.IsEnabled() {
		return nil
	}

	embedding, err := s.llm.Embed(ctx, message)
	if err != nil {
		log.Debug().Err(err).Msg("Embedding failed, skipping correction lookup")
		return nil
	}

	c, err := s.corrections.FindSimilarCorrection(ctx, embedding, s.cfg.CorrectionDistance)
	if err != nil {
		log.Warn().Err(err).Msg("Correction lookup failed")
		return nil
	}
	return c
}

// ask gets a JSON reply from the LLM, falling back to the composed answer
func (s *ChatService) ask(ctx context.Context, t *turn) llmReply {
	if s.llm == nil || !s.llm.IsEnabled() {
		return llmReply{Reply: s.fallback(t)}
	}

	messages := buildMessages(t.message, t.locale, t.filters, t.region, t.link, t.summary, t.listings, t.guidance, true)
	content, err := s.llm.Chat(ctx, messages)
	if err != nil {
		if !errors.Is(err, ErrLLMDisabled) {
			log.Warn().Err(err).Str("chat_id", t.chatID).Msg("LLM chat failed, using composed answer")
		}
		return llmReply{Reply: s.fallback(t)}
	}

	var reply llmReply
	if err := utils.ParseLLMJSON(content, &reply); err != nil || strings.TrimSpace(reply.Reply) == "" {
		log.Warn().Str("chat_id", t.chatID).Str("content", utils.TruncateString(content, 200)).Msg("Unusable LLM reply, using composed answer")
		return llmReply{Reply: s.fallback(t)}
	}

	reply.Reply = strings.TrimSpace(reply.Reply)
	if len(reply.Suggestions) > 3 {
		reply.Suggestions = reply.Suggestions[:3]
	}
	return reply
}

func (s *ChatService) fallback(t *turn) string {
	return parser.ComposeAnswer(t.message, t.locale, t.filters).Text
}

func (s *ChatService) response(t *turn, reply llmReply, took int64) *model.ChatResponse {
	return &model.ChatResponse{
		ChatID:      t.chatID,
		Reply:       reply.Reply,
		Suggestions: reply.Suggestions,
		Filters:     t.filters,
		Region:      t.region,
		Link:        t.link,
		Summary:     t.summary,
		Listings:    t.listings,
		Took:        took,
	}
}

func (s *ChatService) locale(locale string) string {
	if strings.TrimSpace(locale) == "" {
		locale = s.cfg.DefaultLocale
	}
	return parser.NormalizeLocale(locale)
}

// logChat stores the exchange without blocking the response
func (s *ChatService) logChat(req *model.ChatRequest, resp *model.ChatResponse) {
	if s.chats == nil {
		return
	}

	entry := &model.ChatLog{
		ID:             resp.ChatID,
		Locale:         s.locale(req.Locale),
		Message:        req.Message,
		Filters:        model.FiltersColumn{ParsedFilters: resp.Filters},
		Reply:          resp.Reply,
		ResponseTimeMs: int(resp.Took),
		CreatedAt:      time.Now(),
	}
	if req.SessionID != "" {
		entry.SessionID = &req.SessionID
	}
	if resp.Region != nil {
		entry.RegionID = &resp.Region.ID
	}
	entry.ListingIDs = make(model.JSONArray, len(resp.Listings))
	for i, l := range resp.Listings {
		entry.ListingIDs[i] = l.ID
	}

	go func() {
		if err := s.chats.LogChat(context.Background(), entry); err != nil {
			log.Error().Err(err).Str("chat_id", entry.ID).Msg("Failed to log chat")
		}
	}()
}

// LogFeedback stores a rating of a chat reply
func (s *ChatService) LogFeedback(ctx context.Context, req *model.FeedbackRequest) error {
	if s.chats == nil {
		return errors.New("feedback storage is not configured")
	}

	fb := &model.Feedback{
		ID:        uuid.NewString(),
		ChatID:    req.ChatID,
		Rating:    req.Rating,
		CreatedAt: time.Now(),
	}
	if c := strings.TrimSpace(req.Comment); c != "" {
		fb.Comment = &c
	}
	return s.chats.LogFeedback(ctx, fb)
}
