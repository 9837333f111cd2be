// Package preflight validates the credential set before any collection work
// starts. Every secret is checked and reported even after the first failure,
// so a single run surfaces the complete list of misconfigured credentials.
package preflight

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/errors"
	"github.com/web3data/pipeline/internal/secrets"
)

// Check is the validation outcome for a single secret.
type Check struct {
	Name    string
	Present bool
}

// Report aggregates the per-secret checks for one run.
type Report struct {
	Checks []Check
}

// OK reports whether every required secret was present and non-empty.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if !c.Present {
			return false
		}
	}
	return true
}

// Missing returns the names of absent or empty secrets, in check order.
func (r Report) Missing() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.Present {
			names = append(names, c.Name)
		}
	}
	return names
}

// Validate checks each required secret in order and logs one line per
// secret. It never short-circuits: the report always contains an entry for
// all of secrets.Required. Values are never logged.
func Validate(ctx context.Context, set secrets.Set) Report {
	logger := zerolog.Ctx(ctx)

	report := Report{Checks: make([]Check, 0, len(secrets.Required))}
	for _, name := range secrets.Required {
		present := set.Get(name) != ""
		report.Checks = append(report.Checks, Check{Name: name, Present: present})

		if present {
			logger.Info().Str("secret", name).Msgf("✓ %s is set", name)
		} else {
			logger.Error().Str("secret", name).Msgf("✗ ERROR: %s is NOT SET", name)
		}
	}

	if !report.OK() {
		logger.Error().
			Strs("missing", report.Missing()).
			Msg("Preflight validation failed")
	}
	return report
}

// Run performs validation and converts a failed report into an error,
// suitable for use as a pipeline step.
func Run(ctx context.Context, source secrets.Source) (secrets.Set, Report, error) {
	set, err := source.Load(ctx)
	if err != nil {
		return nil, Report{}, err
	}

	report := Validate(ctx, set)
	if !report.OK() {
		return set, report, errors.ErrMissingSecrets
	}
	return set, report, nil
}
