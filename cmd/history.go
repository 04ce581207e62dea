package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/surge-downloader/trtool/internal/engine/state"
	"github.com/surge-downloader/trtool/internal/tui"
)

func (a *app) historyCmd() *cobra.Command {
	var limit int
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent builds and verifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				n, err := state.ClearHistory()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Removed %d history records.\n", n)
				return nil
			}

			records, err := state.ListHistory(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(a.stdout, "No history yet.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintln(a.stdout, historyLine(r))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all history records")
	return cmd
}

func historyLine(r state.Record) string {
	status := tui.PassStyle.Render("ok")
	if r.Kind == state.KindVerify && !r.OK() {
		status = tui.FailStyle.Render(fmt.Sprintf("%d bad", r.FailedPieces))
	}
	return fmt.Sprintf("%s  %-6s %-8s %s  %s  %s (%s)",
		r.CreatedAt.Local().Format(time.DateTime),
		r.Kind,
		status,
		tui.HashStyle.Render(shortHash(r.InfoHash)),
		r.Name,
		humanize.IBytes(uint64(r.TotalSize)),
		r.TimeTaken.Round(time.Millisecond))
}
