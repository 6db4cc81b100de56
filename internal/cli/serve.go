package cli

import (
	"os/signal"
	"syscall"

	"github.com/jrsteele09/tripmate-client/dashboard"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.GetDashboardAddr()
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			displayAppname(a.out, a.cfg.GetAppName())
			return dashboard.New(a.cfg, client).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides TRIPMATE_DASHBOARD_ADDR)")
	return cmd
}
