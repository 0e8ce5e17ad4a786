package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costa-assist/internal/model"
)

// newTestRepository connects to TEST_DATABASE_URL, a PostgreSQL database with
// the pgvector extension available. Tests skip when it is unset.
func newTestRepository(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	repo, err := NewPostgresRepository(dsn, 2, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestPostgresRepository_Corrections(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	villa := model.PropertyTypeVilla
	vec := pgvector.NewVector([]float32{1, 0, 0})
	stored := &model.Correction{
		ID:        uuid.NewString(),
		Question:  "villas in Ronda",
		BadAnswer: "none",
		Answer:    "I found villas in Ronda that match your request.",
		Link:      "/en/properties?propertyType=villa",
		Locale:    "en",
		Filters:   model.FiltersColumn{ParsedFilters: &model.ParsedFilters{PropertyType: &villa}},
		Embedding: &vec,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.LogCorrection(ctx, stored))

	found, err := repo.FindSimilarCorrection(ctx, []float32{0.99, 0.01, 0}, 0.1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, stored.Answer, found.Answer)
	require.NotNil(t, found.Filters.ParsedFilters)
	assert.Equal(t, villa, *found.Filters.PropertyType)
	assert.Less(t, *found.Distance, 0.1)

	none, err := repo.FindSimilarCorrection(ctx, []float32{0, 1, 0}, 0.1)
	require.NoError(t, err)
	assert.Nil(t, none)

	recent, err := repo.RecentCorrections(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}

func TestPostgresRepository_ChatAndFeedback(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	region := 1
	entry := &model.ChatLog{
		ID:         uuid.NewString(),
		Locale:     "en",
		Message:    "villas in Ronda",
		Filters:    model.FiltersColumn{ParsedFilters: &model.ParsedFilters{}},
		RegionID:   &region,
		Reply:      "Here you go",
		ListingIDs: model.JSONArray{"R1"},
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.LogChat(ctx, entry))

	comment := "spot on"
	require.NoError(t, repo.LogFeedback(ctx, &model.Feedback{
		ID:        uuid.NewString(),
		ChatID:    entry.ID,
		Rating:    "up",
		Comment:   &comment,
		CreatedAt: time.Now(),
	}))
}
