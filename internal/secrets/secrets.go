// Package secrets models the credential set the pipeline needs and the
// stores it can be loaded from. Secrets are always handled as an explicit
// Set passed to callers, never read ad hoc from the process environment.
package secrets

// Names of the seven required secrets, in the order they are validated
// and reported.
const (
	PostgresURI        = "POSTGRES_URI"
	MongoURI           = "MONGO_URI"
	RedditClientID     = "REDDIT_CLIENT_ID"
	RedditClientSecret = "REDDIT_CLIENT_SECRET"
	RedditUserAgent    = "REDDIT_USER_AGENT"
	TwitterBearerToken = "TWITTER_BEARER_TOKEN"
	Web3CareerAPIKey   = "WEB3_CAREER_API_KEY"
)

// Required lists every secret the pipeline depends on. Preflight validation
// iterates this slice so the report order is stable.
var Required = []string{
	PostgresURI,
	MongoURI,
	RedditClientID,
	RedditClientSecret,
	RedditUserAgent,
	TwitterBearerToken,
	Web3CareerAPIKey,
}

// Set is a resolved mapping from secret name to value. Values may be empty;
// emptiness is what preflight validation exists to catch.
type Set map[string]string

// Get returns the value for name, or "" if absent.
func (s Set) Get(name string) string {
	return s[name]
}

// Environ renders the set as KEY=value pairs suitable for os/exec, covering
// exactly the required names and nothing else.
func (s Set) Environ() []string {
	env := make([]string, 0, len(Required))
	for _, name := range Required {
		env = append(env, name+"="+s[name])
	}
	return env
}
