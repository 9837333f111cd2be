package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/dao/rundao"
	errs "github.com/web3data/pipeline/internal/errors"
	"github.com/web3data/pipeline/internal/secrets"
)

// Script delegates a run to an external entry-point program. The seven
// validated secrets are injected into the subprocess environment; output is
// relayed untouched and the exit status becomes the run outcome.
type Script struct {
	Path string
	Dir  string // working directory; empty means inherit

	// Stdout and Stderr default to the process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewScript creates a script delegate for the given executable path.
func NewScript(path, dir string) *Script {
	return &Script{Path: path, Dir: dir}
}

func (s *Script) Name() string {
	return "script:" + s.Path
}

// Run executes the script and relays its exit status. The script inherits
// the parent environment with the secret set appended, so the secret values
// reach it unmodified even if stale copies exist in the parent env.
func (s *Script) Run(ctx context.Context, set secrets.Set) (rundao.Counters, error) {
	logger := zerolog.Ctx(ctx)

	cmd := exec.CommandContext(ctx, s.Path)
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(), set.Environ()...)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	logger.Info().Str("script", s.Path).Msg("Executing delegated script")
	err := cmd.Run()
	if err == nil {
		return rundao.Counters{}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return rundao.Counters{}, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return rundao.Counters{}, fmt.Errorf("%w: %s exited with code %d", errs.ErrDelegateFailed, s.Path, exitErr.ExitCode())
	}
	return rundao.Counters{}, fmt.Errorf("failed to execute %s: %w", s.Path, err)
}
