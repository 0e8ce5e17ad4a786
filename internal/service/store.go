package service

import (
	"context"

	"costa-assist/internal/model"
)

// ChatStore persists chat exchanges and their ratings
type ChatStore interface {
	LogChat(ctx context.Context, entry *model.ChatLog) error
	LogFeedback(ctx context.Context, fb *model.Feedback) error
}

// CorrectionStore persists answer corrections and finds earlier ones by
// question similarity
type CorrectionStore interface {
	LogCorrection(ctx context.Context, c *model.Correction) error
	FindSimilarCorrection(ctx context.Context, embedding []float32, maxDistance float64) (*model.Correction, error)
	RecentCorrections(ctx context.Context, limit int) ([]model.Correction, error)
}
