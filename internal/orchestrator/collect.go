package orchestrator

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/web3data/pipeline/internal/dao/jobdao"
	"github.com/web3data/pipeline/internal/dao/postdao"
	"github.com/web3data/pipeline/internal/dao/rundao"
	errs "github.com/web3data/pipeline/internal/errors"
	"github.com/web3data/pipeline/internal/secrets"
	"github.com/web3data/pipeline/internal/tasks"
	"github.com/web3data/pipeline/internal/tasks/cryptojobslist"
	"github.com/web3data/pipeline/internal/tasks/reddit"
	"github.com/web3data/pipeline/internal/tasks/sentiment"
	"github.com/web3data/pipeline/internal/tasks/twitter"
	"github.com/web3data/pipeline/internal/tasks/web3career"
)

const connectTimeout = 5 * time.Second

// Collect is the built-in delegate: it connects to both stores, builds the
// five collection tasks in their fixed order, and runs them as a suite.
type Collect struct {
	client    *http.Client
	suiteOpts []tasks.SuiteOption
	only      string
}

// CollectOption configures a Collect delegate.
type CollectOption func(*Collect)

// WithHTTPClient overrides the outbound HTTP client.
func WithHTTPClient(client *http.Client) CollectOption {
	return func(c *Collect) { c.client = client }
}

// WithSuiteOptions forwards options to the task suite.
func WithSuiteOptions(opts ...tasks.SuiteOption) CollectOption {
	return func(c *Collect) { c.suiteOpts = opts }
}

// WithOnlyTask restricts the run to a single named task, the way the
// collectors can be run individually during development.
func WithOnlyTask(name string) CollectOption {
	return func(c *Collect) { c.only = name }
}

// NewCollect creates the built-in collection delegate.
func NewCollect(opts ...CollectOption) *Collect {
	c := &Collect{
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collect) Name() string { return "builtin-suite" }

// Run connects to Postgres and Mongo, prepares schema and indexes, then
// executes the task suite. Connections live for the duration of the run.
func (c *Collect) Run(ctx context.Context, set secrets.Set) (rundao.Counters, error) {
	logger := zerolog.Ctx(ctx)

	if set.Get(secrets.PostgresURI) == "" {
		return rundao.Counters{}, errs.ErrNoPostgres
	}
	if set.Get(secrets.MongoURI) == "" {
		return rundao.Counters{}, errs.ErrNoMongo
	}

	db, err := openPostgres(ctx, set.Get(secrets.PostgresURI))
	if err != nil {
		return rundao.Counters{}, err
	}
	defer db.Close()

	mongoClient, err := openMongo(ctx, set.Get(secrets.MongoURI))
	if err != nil {
		return rundao.Counters{}, err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	jobs := jobdao.New(db)
	if err := jobs.EnsureSchema(ctx); err != nil {
		return rundao.Counters{}, err
	}

	posts := postdao.New(mongoClient)
	if err := posts.EnsureIndexes(ctx); err != nil {
		return rundao.Counters{}, err
	}

	redditClient := reddit.NewAPIClient(ctx,
		set.Get(secrets.RedditClientID),
		set.Get(secrets.RedditClientSecret),
		set.Get(secrets.RedditUserAgent),
	)

	all := []tasks.Task{
		web3career.New(c.client, jobs, set.Get(secrets.Web3CareerAPIKey)),
		cryptojobslist.New(c.client, jobs),
		reddit.New(redditClient, posts),
		twitter.New(c.client, posts, set.Get(secrets.TwitterBearerToken)),
		sentiment.New(posts),
	}

	selected, err := c.selectTasks(all)
	if err != nil {
		return rundao.Counters{}, err
	}

	suite := tasks.NewSuite(selected, c.suiteOpts...)

	summary, err := suite.Run(ctx)
	counters := rundao.Counters{
		JobsInserted:  summary.JobsInserted,
		PostsInserted: summary.PostsInserted,
		PostsAnalyzed: summary.PostsAnalyzed,
	}
	return counters, err
}

// selectTasks applies the single-task filter, if any.
func (c *Collect) selectTasks(all []tasks.Task) ([]tasks.Task, error) {
	if c.only == "" {
		return all, nil
	}
	for _, task := range all {
		if task.Name() == c.only {
			return []tasks.Task{task}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownTask, c.only)
}

func openPostgres(ctx context.Context, uri string) (*sql.DB, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	zerolog.Ctx(ctx).Info().Msg("Postgres connection established")
	return db, nil
}

func openMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := mongooptions.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	zerolog.Ctx(ctx).Info().Msg("MongoDB connection established")
	return client, nil
}

// PostgresRecorderFactory opens a dedicated connection for run history in
// the database addressed by POSTGRES_URI.
func PostgresRecorderFactory(ctx context.Context, set secrets.Set) (Recorder, func(), error) {
	db, err := openPostgres(ctx, set.Get(secrets.PostgresURI))
	if err != nil {
		return nil, nil, err
	}

	dao := rundao.New(db)
	if err := dao.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return dao, func() { _ = db.Close() }, nil
}
