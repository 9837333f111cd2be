// Package sentiment scores stored social posts with VADER polarity and
// writes the scores back.
package sentiment

import (
	"context"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/web3data/pipeline/internal/dao/postdao"
	"github.com/web3data/pipeline/internal/models"
	"github.com/web3data/pipeline/internal/tasks"
)

const (
	defaultBatchLimit = 50
	minTextLength     = 5
)

// PostStore is the persistence surface the analyzer needs.
type PostStore interface {
	FindUnanalyzed(ctx context.Context, limit int) ([]postdao.UnanalyzedPost, error)
	SetSentiment(ctx context.Context, id primitive.ObjectID, sentiment models.Sentiment) error
}

// Analyzer scores a batch of unanalyzed posts per run.
type Analyzer struct {
	store    PostStore
	analyzer *govader.SentimentIntensityAnalyzer
	limit    int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBatchLimit overrides the number of posts scored per run.
func WithBatchLimit(n int) Option {
	return func(a *Analyzer) { a.limit = n }
}

// New creates a sentiment analyzer task.
func New(store PostStore, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:    store,
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		limit:    defaultBatchLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Name() string { return "sentiment" }

// Run scores up to the batch limit of posts without a sentiment field.
// Posts with too little text stay unanalyzed. Individual update failures
// are logged and do not stop the batch.
func (a *Analyzer) Run(ctx context.Context) (tasks.Summary, error) {
	logger := zerolog.Ctx(ctx)

	posts, err := a.store.FindUnanalyzed(ctx, a.limit)
	if err != nil {
		return tasks.Summary{}, err
	}
	logger.Info().Int("found", len(posts)).Msg("Scoring posts for sentiment")

	var summary tasks.Summary
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		text := strings.TrimSpace(post.Text)
		if len(text) < minTextLength {
			summary.Skipped++
			continue
		}

		scores := a.analyzer.PolarityScores(text)
		err := a.store.SetSentiment(ctx, post.ID, models.Sentiment{
			Negative: scores.Negative,
			Neutral:  scores.Neutral,
			Positive: scores.Positive,
			Compound: scores.Compound,
		})
		if err != nil {
			logger.Error().Err(err).Str("post_id", post.ID.Hex()).Msg("Failed to store sentiment")
			summary.Skipped++
			continue
		}
		summary.PostsAnalyzed++
	}

	return summary, nil
}
