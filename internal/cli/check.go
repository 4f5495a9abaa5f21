package cli

import (
	"fmt"
	"io"
	"os"

	"triagebot/internal/core/botconf"
	"triagebot/internal/core/missing"
	"triagebot/internal/platform/config"
	perr "triagebot/internal/platform/errors"
	"triagebot/internal/services/triage/service"

	"github.com/spf13/cobra"
)

type checkFlags struct {
	config  string
	comment bool
}

func newCheckCmd() *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Report required fields missing from a markdown issue body",
		Long: `Runs the missing-field detector over FILE with the repository
configuration and prints each missing field. Exits 1 when any are missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(config.New(), f, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.config, "config", "", "config file (default $GITHUB_WORKSPACE/$TRIAGEBOT_CONFIG_PATH)")
	cmd.Flags().BoolVar(&f.comment, "comment", false, "print the comment the bot would post instead of the field list")
	return cmd
}

func check(cfg config.Conf, f checkFlags, file string, out io.Writer) error {
	body, err := os.ReadFile(file)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read %s", file)
	}

	path := f.config
	if path == "" {
		path = configPath(cfg, cfg.MayString("TRIAGEBOT_CONFIG_PATH", ""))
	}
	conf, err := botconf.Load(path)
	if err != nil {
		return err
	}

	found := missing.New(nil).WithAliases(conf.Aliases).Detect(string(body), conf.RequiredFields)
	if len(found) == 0 {
		_, err := fmt.Fprintln(out, "all required fields present")
		return err
	}

	if f.comment {
		if _, err := fmt.Fprintln(out, service.MissingInfoComment(found)); err != nil {
			return err
		}
		return errMissingFields
	}
	for _, name := range found {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}
	return errMissingFields
}
