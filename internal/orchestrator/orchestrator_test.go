package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3data/pipeline/internal/dao/rundao"
	errs "github.com/web3data/pipeline/internal/errors"
	"github.com/web3data/pipeline/internal/secrets"
)

type staticSource struct {
	set secrets.Set
	err error
}

func (s staticSource) Load(ctx context.Context) (secrets.Set, error) {
	return s.set, s.err
}

type fakeDelegate struct {
	counters rundao.Counters
	err      error
	ran      bool
	gotSet   secrets.Set
	block    time.Duration
}

func (f *fakeDelegate) Name() string { return "fake" }

func (f *fakeDelegate) Run(ctx context.Context, set secrets.Set) (rundao.Counters, error) {
	f.ran = true
	f.gotSet = set
	if f.block > 0 {
		select {
		case <-time.After(f.block):
		case <-ctx.Done():
			return rundao.Counters{}, ctx.Err()
		}
	}
	return f.counters, f.err
}

type memRecorder struct {
	created  []string
	started  []string
	finished map[string]rundao.RunStatus
	errMsgs  map[string]*string
}

func newMemRecorder() *memRecorder {
	return &memRecorder{
		finished: make(map[string]rundao.RunStatus),
		errMsgs:  make(map[string]*string),
	}
}

func (m *memRecorder) Create(ctx context.Context, id string, trigger rundao.Trigger) (rundao.Record, error) {
	m.created = append(m.created, id)
	return rundao.Record{ID: id, Trigger: trigger}, nil
}

func (m *memRecorder) Start(ctx context.Context, id string) error {
	m.started = append(m.started, id)
	return nil
}

func (m *memRecorder) Finish(ctx context.Context, id string, status rundao.RunStatus, errMsg *string, counters rundao.Counters) error {
	m.finished[id] = status
	m.errMsgs[id] = errMsg
	return nil
}

func fullSet() secrets.Set {
	set := make(secrets.Set)
	for _, name := range secrets.Required {
		set[name] = "value-" + name
	}
	return set
}

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func TestExecuteHappyPath(t *testing.T) {
	delegate := &fakeDelegate{counters: rundao.Counters{JobsInserted: 7, PostsInserted: 11, PostsAnalyzed: 20}}
	recorder := newMemRecorder()

	orch := New(staticSource{set: fullSet()}, delegate,
		WithRecorderFactory(func(ctx context.Context, set secrets.Set) (Recorder, func(), error) {
			return recorder, nil, nil
		}))

	result, err := orch.Execute(testContext(), rundao.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, result.State)
	assert.True(t, delegate.ran)
	assert.Equal(t, 7, result.Counters.JobsInserted)
	assert.Equal(t, rundao.RunStatusSuccess, recorder.finished[result.RunID])
	assert.Nil(t, recorder.errMsgs[result.RunID])
}

func TestExecuteDelegateReceivesUnmodifiedSecrets(t *testing.T) {
	set := fullSet()
	delegate := &fakeDelegate{}

	orch := New(staticSource{set: set}, delegate)
	_, err := orch.Execute(testContext(), rundao.TriggerManual)
	require.NoError(t, err)

	for _, name := range secrets.Required {
		assert.Equal(t, set.Get(name), delegate.gotSet.Get(name))
	}
}

func TestExecuteMissingSecretSkipsDelegate(t *testing.T) {
	set := fullSet()
	set[secrets.RedditClientSecret] = ""
	delegate := &fakeDelegate{}

	orch := New(staticSource{set: set}, delegate)
	result, err := orch.Execute(testContext(), rundao.TriggerCron)

	assert.ErrorIs(t, err, errs.ErrMissingSecrets)
	assert.Equal(t, StateFailed, result.State)
	assert.False(t, delegate.ran, "delegate must never run after failed validation")

	// The report still covers every secret.
	assert.Len(t, result.Report.Checks, len(secrets.Required))
	assert.Equal(t, []string{secrets.RedditClientSecret}, result.Report.Missing())
}

func TestExecuteDelegateFailure(t *testing.T) {
	boom := errors.New("collection blew up")
	delegate := &fakeDelegate{err: boom}
	recorder := newMemRecorder()

	orch := New(staticSource{set: fullSet()}, delegate,
		WithRecorderFactory(func(ctx context.Context, set secrets.Set) (Recorder, func(), error) {
			return recorder, nil, nil
		}))

	result, err := orch.Execute(testContext(), rundao.TriggerManual)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, rundao.RunStatusFailed, recorder.finished[result.RunID])
	require.NotNil(t, recorder.errMsgs[result.RunID])
	assert.Contains(t, *recorder.errMsgs[result.RunID], "collection blew up")
}

func TestExecuteTimeoutReportedAsRunTimeout(t *testing.T) {
	delegate := &fakeDelegate{block: time.Second}

	orch := New(staticSource{set: fullSet()}, delegate, WithTimeout(30*time.Millisecond))
	result, err := orch.Execute(testContext(), rundao.TriggerCron)

	assert.ErrorIs(t, err, errs.ErrRunTimeout)
	assert.Equal(t, StateFailed, result.State)
}

func TestExecuteSourceFailure(t *testing.T) {
	delegate := &fakeDelegate{}
	orch := New(staticSource{err: errors.New("store unreachable")}, delegate)

	result, err := orch.Execute(testContext(), rundao.TriggerManual)

	assert.Error(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.False(t, delegate.ran)
}

func TestExecuteBrokenRecorderDoesNotFailRun(t *testing.T) {
	delegate := &fakeDelegate{}

	orch := New(staticSource{set: fullSet()}, delegate,
		WithRecorderFactory(func(ctx context.Context, set secrets.Set) (Recorder, func(), error) {
			return nil, nil, errors.New("history db down")
		}))

	result, err := orch.Execute(testContext(), rundao.TriggerManual)

	assert.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
}

func TestExecuteRunIDsAreUnique(t *testing.T) {
	orch := New(staticSource{set: fullSet()}, &fakeDelegate{})

	a, err := orch.Execute(testContext(), rundao.TriggerManual)
	require.NoError(t, err)
	b, err := orch.Execute(testContext(), rundao.TriggerManual)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
}
