package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"animestudio/internal/api"
	"animestudio/internal/ui"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print dependency and model installation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := rt.requestContext(cmd.Context())
			defer cancel()
			snap, err := rt.client.Status(ctx)
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			return printStatus(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw status document")
	return cmd
}

func printStatus(out io.Writer, snap api.StatusSnapshot) error {
	ready := "not ready"
	if snap.Ready() {
		ready = "ready"
	}
	fmt.Fprintf(out, "Overall: %s (%.0f%%) %s\n\n", ready, snap.Overall.Percent(), snap.Overall.Message)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tCOMPONENT\tPROGRESS\tMESSAGE")
	writeComponents(tw, "dependencies", snap.Dependencies)
	writeComponents(tw, "models", snap.Models)
	return tw.Flush()
}

func writeComponents(w io.Writer, section string, comps api.Components) {
	for _, c := range comps {
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\n", section, ui.ComponentDisplayName(c.Name), c.Percent(), c.Message)
	}
}
