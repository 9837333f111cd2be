package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/web3data/pipeline/internal/dao/postdao"
	"github.com/web3data/pipeline/internal/models"
)

type memStore struct {
	unanalyzed []postdao.UnanalyzedPost
	scores     map[primitive.ObjectID]models.Sentiment
	failOn     primitive.ObjectID
}

func newMemStore(posts ...postdao.UnanalyzedPost) *memStore {
	return &memStore{
		unanalyzed: posts,
		scores:     make(map[primitive.ObjectID]models.Sentiment),
	}
}

func (m *memStore) FindUnanalyzed(ctx context.Context, limit int) ([]postdao.UnanalyzedPost, error) {
	if limit < len(m.unanalyzed) {
		return m.unanalyzed[:limit], nil
	}
	return m.unanalyzed, nil
}

func (m *memStore) SetSentiment(ctx context.Context, id primitive.ObjectID, s models.Sentiment) error {
	if id == m.failOn {
		return errors.New("write failed")
	}
	m.scores[id] = s
	return nil
}

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func TestRunScoresPosts(t *testing.T) {
	positive := postdao.UnanalyzedPost{ID: primitive.NewObjectID(), Text: "This new role is absolutely amazing, great pay and a wonderful team!"}
	negative := postdao.UnanalyzedPost{ID: primitive.NewObjectID(), Text: "Terrible layoffs again, the job market is awful and depressing."}

	store := newMemStore(positive, negative)
	analyzer := New(store)

	summary, err := analyzer.Run(testContext())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PostsAnalyzed)
	assert.Greater(t, store.scores[positive.ID].Compound, 0.0)
	assert.Less(t, store.scores[negative.ID].Compound, 0.0)
}

func TestRunSkipsShortText(t *testing.T) {
	short := postdao.UnanalyzedPost{ID: primitive.NewObjectID(), Text: "  ok  "}
	store := newMemStore(short)

	summary, err := New(store).Run(testContext())
	require.NoError(t, err)

	assert.Zero(t, summary.PostsAnalyzed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, store.scores)
}

func TestRunContinuesPastUpdateFailure(t *testing.T) {
	bad := postdao.UnanalyzedPost{ID: primitive.NewObjectID(), Text: "This posting looks fantastic and exciting!"}
	good := postdao.UnanalyzedPost{ID: primitive.NewObjectID(), Text: "Honestly a pretty decent opportunity overall."}

	store := newMemStore(bad, good)
	store.failOn = bad.ID

	summary, err := New(store).Run(testContext())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PostsAnalyzed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Contains(t, store.scores, good.ID)
}

func TestRunHonorsBatchLimit(t *testing.T) {
	var posts []postdao.UnanalyzedPost
	for i := 0; i < 5; i++ {
		posts = append(posts, postdao.UnanalyzedPost{
			ID:   primitive.NewObjectID(),
			Text: "Great company with a really strong engineering culture.",
		})
	}

	store := newMemStore(posts...)
	summary, err := New(store, WithBatchLimit(3)).Run(testContext())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.PostsAnalyzed)
}
