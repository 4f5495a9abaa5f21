package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"triagebot/internal/adapters/webhook"
	"triagebot/internal/core/botconf"
	"triagebot/internal/platform/config"
	perr "triagebot/internal/platform/errors"
	"triagebot/internal/platform/logger"
	"triagebot/internal/services/triage/domain"
	triagemod "triagebot/internal/services/triage/module"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type runFlags struct {
	dryRun      bool
	freshLabels bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Handle the event that triggered the current GitHub Actions job",
		Long: `Reads GITHUB_EVENT_NAME and GITHUB_EVENT_PATH, applies labels and
comments to the issue in GITHUB_REPOSITORY and prints the result as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), config.New(), f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "log intended label and comment writes without performing them")
	cmd.Flags().BoolVar(&f.freshLabels, "fresh-labels", false, "read current labels from the API instead of the event snapshot")
	return cmd
}

// runOnce handles one Actions event: env, event file, local config, dispatch
func runOnce(ctx context.Context, cfg config.Conf, f runFlags, out io.Writer) error {
	log := logger.Named("run")

	o, err := triagemod.FromConfig(cfg)
	if err != nil {
		return err
	}
	o.DryRun = o.DryRun || f.dryRun
	o.FreshLabels = o.FreshLabels || f.freshLabels

	repo, err := cfg.String("GITHUB_REPOSITORY")
	if err != nil {
		return err
	}
	eventName := cfg.MayString("GITHUB_EVENT_NAME", "")
	raw, err := loadEvent(cfg)
	if err != nil {
		return err
	}

	conf, err := botconf.Load(configPath(cfg, o.ConfigPath))
	if err != nil {
		return err
	}
	log.Info().
		Strs("categories", conf.Categories).
		Strs("required_fields", conf.RequiredFields).
		Bool("classification_enabled", conf.ClassificationEnabled).
		Msg("config loaded")
	o.Config = &conf

	sessions, err := triagemod.NewSessions(o, nil)
	if err != nil {
		return err
	}

	ev, ok := webhook.Parse(eventName, raw)
	if !ok {
		log.Info().Str("event", eventName).Msg("no event to handle")
		return printResult(out, domain.Skipped("no event"))
	}

	d := domain.Delivery{
		ID:             cfg.MayString("GITHUB_RUN_ID", uuid.NewString()),
		Event:          eventName,
		Repository:     repo,
		InstallationID: webhook.InstallationID(raw),
	}
	ctx = logger.WithDelivery(ctx, d.ID, repo)

	runner, release, err := sessions.Open(ctx, d, ev.Kind())
	if err != nil {
		return err
	}
	defer release()

	res, err := runner.Dispatch(ctx, ev)
	if err != nil {
		return err
	}
	return printResult(out, res)
}

func loadEvent(cfg config.Conf) (map[string]any, error) {
	path, err := cfg.String("GITHUB_EVENT_PATH")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "read event %s", path), "GITHUB_EVENT_PATH")
	}
	return webhook.Decode(data)
}

// configPath resolves p against GITHUB_WORKSPACE
func configPath(cfg config.Conf, p string) string {
	if p == "" {
		p = botconf.DefaultPath
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.MayString("GITHUB_WORKSPACE", "."), p)
}

func printResult(out io.Writer, res domain.Result) error {
	enc := json.NewEncoder(out)
	return enc.Encode(res)
}
