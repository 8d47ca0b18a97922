package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"animestudio/internal/api"
)

func newInstallCmd(flags *globalFlags) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "install [all|dependencies|models]",
		Short: "Start installing dependencies or models",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			}
			scope, err := api.ParseInstallScope(raw)
			if err != nil {
				return err
			}

			rt, err := setup(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := rt.requestContext(cmd.Context())
			ack, err := rt.client.Install(ctx, scope)
			cancel()
			if err != nil {
				return fmt.Errorf("start installation: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installing %s: %s\n", scope, ack.Message)

			if !wait {
				return nil
			}
			return rt.waitReady(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "poll status until the backend reports ready")
	return cmd
}

// waitReady polls status at the install interval until the backend is ready.
// Poll failures are logged and retried.
func (r *runtime) waitReady(ctx context.Context, out io.Writer) error {
	interval := r.cfg.InstallPollInterval.D()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1.0
	for {
		reqCtx, cancel := r.requestContext(ctx)
		snap, err := r.client.Status(reqCtx)
		cancel()
		switch {
		case err != nil:
			r.logger.Warn("status poll failed", "err", err)
		case snap.Ready():
			fmt.Fprintf(out, "Ready: %s\n", snap.Overall.Message)
			return nil
		case snap.Overall.Percent() != last:
			last = snap.Overall.Percent()
			fmt.Fprintf(out, "%3.0f%% %s\n", last, snap.Overall.Message)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
