package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/trtool/internal/version"
)

func (a *app) versionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", version.Name, version.Version)
			if version.BuildTime != "" {
				fmt.Fprintf(a.stdout, "Built: %s\n", version.BuildTime)
			}
			if !check {
				return nil
			}

			info, err := version.CheckForUpdate(cmd.Context(), version.Version)
			if err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}
			switch {
			case info == nil:
				fmt.Fprintln(a.stdout, "Development build, update check skipped.")
			case info.UpdateAvailable:
				fmt.Fprintf(a.stdout, "Update available: %s (%s)\n", info.LatestVersion, info.ReleaseURL)
			default:
				fmt.Fprintln(a.stdout, "You are running the latest version.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}
