// Package cli holds the triagebot cobra commands
package cli

import (
	"context"
	"errors"

	"triagebot/internal/core/version"
	perr "triagebot/internal/platform/errors"
	"triagebot/internal/platform/logger"

	"github.com/spf13/cobra"
)

// Process exit codes
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitConfig = 2
)

// errMissingFields makes `check` exit 1 without an error log
var errMissingFields = errors.New("required fields missing")

// NewRoot builds the command tree
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "triagebot",
		Short: "Issue triage for GitHub repositories",
		Long: `triagebot labels new issues by category, asks reporters for missing
details and answers /label and /reclassify comments.

Run it from a GitHub Actions workflow with "triagebot run", or as a
GitHub App webhook receiver with "triagebot serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = version.Info().Version
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	root.AddCommand(newRunCmd(), newServeCmd(), newCheckCmd(), newVersionCmd())
	return root
}

// Execute runs the command tree with args and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	root := NewRoot()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	code := ExitCode(err)
	if err != nil && !errors.Is(err, errMissingFields) {
		ev := logger.Named("cli").Error().Err(err).Int("exit_code", code)
		if e, ok := perr.As(err); ok && e.Field() != "" {
			ev = ev.Str("field", e.Field())
		}
		ev.Msg("triagebot failed")
	}
	return code
}

// ExitCode maps an error to 0 (nil), 2 (configuration) or 1 (anything else)
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case perr.IsCode(err, perr.ErrorCodeConfig):
		return ExitConfig
	default:
		return ExitFailed
	}
}
