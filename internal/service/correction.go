package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"costa-assist/internal/model"
	"costa-assist/internal/parser"
)

// ErrInvalidFilters is returned when caller-supplied filters break the
// ParsedFilters invariants
var ErrInvalidFilters = errors.New("invalid filters")

// ErrNoStore is returned by operations that need a database when none is configured
var ErrNoStore = errors.New("no correction store configured")

const embedTimeout = 30 * time.Second

// CorrectionService rebuilds answers that staff flagged as wrong
type CorrectionService struct {
	llm           LLMClient
	store         CorrectionStore
	defaultLocale string
}

// NewCorrectionService creates a new correction service. llm and store may be nil.
func NewCorrectionService(llm LLMClient, store CorrectionStore, defaultLocale string) *CorrectionService {
	return &CorrectionService{
		llm:           llm,
		store:         store,
		defaultLocale: defaultLocale,
	}
}

// Correct composes the deterministic answer for the question. Supplied
// filters are used as-is; otherwise the question is parsed.
func (s *CorrectionService) Correct(ctx context.Context, req *model.CorrectionRequest) (*model.CorrectionResponse, error) {
	if req.Filters != nil {
		if err := req.Filters.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilters, err)
		}
	}

	locale := req.Locale
	if strings.TrimSpace(locale) == "" {
		locale = s.defaultLocale
	}
	locale = parser.NormalizeLocale(locale)

	answer := parser.ComposeAnswer(req.Question, locale, req.Filters)

	s.remember(&model.Correction{
		ID:        uuid.NewString(),
		Question:  req.Question,
		BadAnswer: req.BadAnswer,
		Answer:    answer.Text,
		Link:      answer.Link,
		Locale:    locale,
		Filters:   model.FiltersColumn{ParsedFilters: answer.Filters},
		CreatedAt: time.Now(),
	})

	return &model.CorrectionResponse{
		Success: true,
		Answer:  answer.Text,
		Link:    answer.Link,
		Filters: answer.Filters,
	}, nil
}

// remember embeds the question and saves the correction in the background
func (s *CorrectionService) remember(c *model.Correction) {
	if s.store == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), embedTimeout)
		defer cancel()

		if s.llm != nil && s.llm.IsEnabled() {
			embedding, err := s.llm.Embed(ctx, c.Question)
			if err != nil {
				log.Warn().Err(err).Str("correction_id", c.ID).Msg("Failed to embed correction question")
			} else {
				vec := pgvector.NewVector(embedding)
				c.Embedding = &vec
			}
		}

		if err := s.store.LogCorrection(ctx, c); err != nil {
			log.Error().Err(err).Str("correction_id", c.ID).Msg("Failed to log correction")
			return
		}
		log.Info().Str("correction_id", c.ID).Bool("embedded", c.Embedding != nil).Msg("✅ Correction stored")
	}()
}

// Recent returns the latest stored corrections, newest first. limit is
// clamped to 1..100.
func (s *CorrectionService) Recent(ctx context.Context, limit int) ([]model.Correction, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.store.RecentCorrections(ctx, limit)
}
