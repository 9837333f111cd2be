package secrets

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredCoversAllSevenSecrets(t *testing.T) {
	assert.Equal(t, []string{
		"POSTGRES_URI",
		"MONGO_URI",
		"REDDIT_CLIENT_ID",
		"REDDIT_CLIENT_SECRET",
		"REDDIT_USER_AGENT",
		"TWITTER_BEARER_TOKEN",
		"WEB3_CAREER_API_KEY",
	}, Required)
}

func TestSetGet(t *testing.T) {
	set := Set{PostgresURI: "postgres://localhost/web3"}

	assert.Equal(t, "postgres://localhost/web3", set.Get(PostgresURI))
	assert.Empty(t, set.Get(MongoURI))
}

func TestEnvironCoversExactlyTheRequiredNames(t *testing.T) {
	set := make(Set)
	for _, name := range Required {
		set[name] = "v-" + name
	}
	set["UNRELATED"] = "never-exported"

	env := set.Environ()
	require.Len(t, env, len(Required))
	for i, name := range Required {
		assert.Equal(t, name+"=v-"+name, env[i])
	}
}

func TestEnvironRendersMissingValuesEmpty(t *testing.T) {
	env := Set{}.Environ()

	require.Len(t, env, len(Required))
	for _, pair := range env {
		_, value, found := strings.Cut(pair, "=")
		require.True(t, found)
		assert.Empty(t, value)
	}
}

func TestEnvSourceLoad(t *testing.T) {
	for _, name := range Required {
		t.Setenv(name, "env-"+name)
	}

	set, err := NewEnvSource().Load(context.Background())
	require.NoError(t, err)

	for _, name := range Required {
		assert.Equal(t, "env-"+name, set.Get(name))
	}
}

func TestEnvSourceLoadMissingVarsComeBackEmpty(t *testing.T) {
	for _, name := range Required {
		t.Setenv(name, "")
	}

	set, err := NewEnvSource().Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set.Get(TwitterBearerToken))
}
