package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeTask struct {
	name    string
	summary Summary
	err     error
	ran     bool
	sleep   time.Duration
}

func (f *fakeTask) Name() string { return f.name }

func (f *fakeTask) Run(ctx context.Context) (Summary, error) {
	f.ran = true
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
			return Summary{}, ctx.Err()
		}
	}
	return f.summary, f.err
}

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func TestSuiteRunsTasksInOrderAndAggregates(t *testing.T) {
	a := &fakeTask{name: "web3career", summary: Summary{JobsInserted: 5, Skipped: 2}}
	b := &fakeTask{name: "reddit", summary: Summary{PostsInserted: 9}}
	c := &fakeTask{name: "sentiment", summary: Summary{PostsAnalyzed: 14}}

	suite := NewSuite([]Task{a, b, c}, WithPause(0))
	total, err := suite.Run(testContext())

	assert.NoError(t, err)
	assert.True(t, a.ran)
	assert.True(t, b.ran)
	assert.True(t, c.ran)
	assert.Equal(t, Summary{JobsInserted: 5, PostsInserted: 9, PostsAnalyzed: 14, Skipped: 2}, total)
}

func TestSuiteStopsOnFirstFailure(t *testing.T) {
	boom := errors.New("upstream unavailable")
	a := &fakeTask{name: "web3career", summary: Summary{JobsInserted: 3}}
	b := &fakeTask{name: "cryptojobslist", err: boom}
	c := &fakeTask{name: "reddit"}

	suite := NewSuite([]Task{a, b, c}, WithPause(0))
	total, err := suite.Run(testContext())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "cryptojobslist")
	assert.False(t, c.ran)
	assert.Equal(t, 3, total.JobsInserted)
}

func TestSuiteEnforcesPerTaskTimeout(t *testing.T) {
	slow := &fakeTask{name: "twitter", sleep: time.Second}
	next := &fakeTask{name: "sentiment"}

	suite := NewSuite([]Task{slow, next}, WithPause(0), WithTaskTimeout(20*time.Millisecond))
	_, err := suite.Run(testContext())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, next.ran)
}

func TestSuiteStopsWhenRunContextCancelled(t *testing.T) {
	a := &fakeTask{name: "web3career"}
	b := &fakeTask{name: "reddit"}

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	suite := NewSuite([]Task{a, b}, WithPause(0))
	_, err := suite.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, a.ran)
}

func TestSuiteNames(t *testing.T) {
	suite := NewSuite([]Task{
		&fakeTask{name: "web3career"},
		&fakeTask{name: "cryptojobslist"},
	})
	assert.Equal(t, []string{"web3career", "cryptojobslist"}, suite.Names())
}
