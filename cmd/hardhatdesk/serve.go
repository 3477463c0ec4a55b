package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/rpc"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the toolchain operations over JSON-RPC for the desktop frontend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, flags)
			if err != nil {
				return err
			}
			addr := app.Config.Server.Listen
			if listen != "" {
				addr = listen
			}
			server := rpc.NewServer(app.Service, rpc.Options{
				Addr:           addr,
				Logger:         app.Logger.With("component", "rpc"),
				Metrics:        app.Metrics,
				RateLimitRPS:   app.Config.Server.RateLimitRPS,
				RateLimitBurst: app.Config.Server.RateLimitBurst,
			})
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (overrides server.listen)")
	return cmd
}
