package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triagebot/internal/platform/config"
	"triagebot/internal/platform/logger"
	phttp "triagebot/internal/platform/net/http"
	"triagebot/internal/services/api"

	"github.com/spf13/cobra"
)

const defaultShutdownGrace = 30 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive GitHub webhook deliveries over HTTP",
		Long: `Serves POST /webhooks/github plus /healthz and /version. Deliveries are
verified with TRIAGEBOT_WEBHOOK_SECRET and authenticated either with
GITHUB_TOKEN or as a GitHub App (TRIAGEBOT_APP_ID and a private key).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				if err := os.Setenv("TRIAGEBOT_HTTP_ADDR", addr); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.New())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides TRIAGEBOT_HTTP_ADDR")
	return cmd
}

// serve runs the webhook server until ctx is cancelled, then drains in-flight deliveries
func serve(ctx context.Context, cfg config.Conf) error {
	log := logger.Named("serve")

	srv := phttp.NewServer(cfg)
	reg, err := api.Mount(srv.Router(), api.Options{Config: cfg, Logger: logger.Get()})
	if err != nil {
		return err
	}
	log.Info().Strs("modules", reg.Names()).Str("addr", srv.Addr()).Msg("modules mounted")

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	grace := cfg.MayDuration("TRIAGEBOT_SHUTDOWN_TIMEOUT", defaultShutdownGrace)
	log.Info().Dur("grace", grace).Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errc
}
