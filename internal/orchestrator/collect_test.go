package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/web3data/pipeline/internal/errors"
	"github.com/web3data/pipeline/internal/secrets"
	"github.com/web3data/pipeline/internal/tasks"
)

type namedTask struct {
	name string
}

func (n namedTask) Name() string { return n.name }

func (n namedTask) Run(ctx context.Context) (tasks.Summary, error) {
	return tasks.Summary{}, nil
}

func TestCollectRunRequiresStoreURIs(t *testing.T) {
	tests := []struct {
		name    string
		missing string
		want    error
	}{
		{name: "no postgres", missing: secrets.PostgresURI, want: errs.ErrNoPostgres},
		{name: "no mongo", missing: secrets.MongoURI, want: errs.ErrNoMongo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := fullSet()
			set[tt.missing] = ""

			_, err := NewCollect().Run(testContext(), set)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSelectTasksNoFilterKeepsAll(t *testing.T) {
	all := []tasks.Task{namedTask{name: "a"}, namedTask{name: "b"}}

	selected, err := NewCollect().selectTasks(all)
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func TestSelectTasksFiltersByName(t *testing.T) {
	all := []tasks.Task{namedTask{name: "a"}, namedTask{name: "b"}, namedTask{name: "c"}}

	selected, err := NewCollect(WithOnlyTask("b")).selectTasks(all)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "b", selected[0].Name())
}

func TestSelectTasksUnknownName(t *testing.T) {
	all := []tasks.Task{namedTask{name: "a"}}

	_, err := NewCollect(WithOnlyTask("nope")).selectTasks(all)
	assert.ErrorIs(t, err, errs.ErrUnknownTask)
	assert.Contains(t, err.Error(), "nope")
}
