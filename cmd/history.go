package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("history is disabled (storage.enabled = false)")
			}
			defer db.Close()

			reloads, err := db.GetReloads(limit, 0)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tSOURCE\tSTATUS\tEVENTS\tLATENCY\tCOMMAND")
			for _, r := range reloads {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%dms\t%s\n",
					r.ID,
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					r.Source,
					r.Status,
					r.EventCount,
					r.LatencyMs,
					r.Command,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}
