package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"animestudio/internal/ui"
	"animestudio/internal/ui/textutil"
)

func newCharactersCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "characters",
		Aliases: []string{"chars"},
		Short:   "List characters, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := rt.requestContext(cmd.Context())
			defer cancel()
			chars, err := rt.client.ListCharacters(ctx)
			if err != nil {
				return fmt.Errorf("list characters: %w", err)
			}
			if len(chars) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No characters yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tDESCRIPTION")
			for _, ch := range ui.SortCharacters(chars) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ch.ID, ch.CreatedAt.Format(time.DateTime), textutil.TruncateChars(ch.Description, 60))
			}
			return tw.Flush()
		},
	}
}
