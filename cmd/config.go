package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/trtool/internal/config"
	"github.com/surge-downloader/trtool/internal/tui"
)

func (a *app) configCmd() *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings or write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initFile {
				path := a.opts.configPath
				if path == "" {
					path = config.GetConfigPath()
				}
				if _, err := os.Stat(path); err == nil && !a.opts.force {
					return fmt.Errorf("%s already exists (use -f to overwrite)", path)
				}
				if err := config.SaveSettings(config.DefaultSettings(), path); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Fprintf(a.stdout, "Wrote %s\n", path)
				return nil
			}

			src := a.settings.Source()
			if src == "" {
				src = "defaults"
			}
			fmt.Fprintf(a.stdout, "%s %s\n\n", tui.LabelStyle.Render("Source:"), src)
			values := a.settings.Values()
			for _, m := range config.GetSettingsMetadata() {
				fmt.Fprintf(a.stdout, "%-20s = %v\n", m.Key, values[m.Key])
				fmt.Fprintf(a.stdout, "%-20s   %s\n", "", tui.DimStyle.Render(m.Description))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "Write a config file with the default settings to --config")
	return cmd
}
