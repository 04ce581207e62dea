package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/surge-downloader/trtool/internal/config"
	"github.com/surge-downloader/trtool/internal/engine/state"
	"github.com/surge-downloader/trtool/internal/source"
	"github.com/surge-downloader/trtool/internal/tui"
	"github.com/surge-downloader/trtool/internal/utils"
	"github.com/surge-downloader/trtool/internal/version"
)

// Exit codes
const (
	exitOK     = 0
	exitError  = 1
	exitFailed = 2 // verification found bad pieces or files
)

type options struct {
	configPath string
	quiet      bool
	waitExit   bool
	noColor    bool
	workers    int

	output      string
	pieceLength string
	announce    []string
	private     bool
	comment     string
	noDate      bool
	walkMode    int
	force       bool

	extraBytes string
	copyMagnet bool
	headers    []string
}

// app carries the state shared by every command of one invocation.
type app struct {
	opts     options
	settings *config.Settings

	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool // draw progress bars

	exitCode int
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		settings: config.DefaultSettings(),
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trtool [target | file.torrent | file.torrent target]",
		Short: "Create, inspect and verify BitTorrent metainfo files",
		Long: `trtool creates .torrent files from a file or directory, shows what a
.torrent (or magnet link) describes, and verifies downloaded data against it.

With one target it creates <target>.torrent, with one .torrent it prints the
torrent's info, and with a .torrent plus a target (in either order) it verifies.`,
		Version:           version.Version,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := source.Resolve(args)
			if err != nil {
				return err
			}
			switch plan.Action {
			case source.ActionCreate:
				return a.runCreate(cmd, plan.Target)
			case source.ActionInfo:
				return a.runInfo(cmd, plan.Torrent, plan.Kind)
			default:
				return a.runVerify(cmd, plan.Torrent, plan.Kind, plan.Target)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.configPath, "config", "g", "config.toml", "Config file")
	pf.BoolVarP(&a.opts.quiet, "quiet", "q", false, "Only print results")
	pf.BoolVarP(&a.opts.waitExit, "wait-exit", "e", false, "Wait for Enter before exiting")
	pf.BoolVar(&a.opts.noColor, "no-color", false, "Disable colored output")
	pf.IntVarP(&a.opts.workers, "workers", "j", 0, "Hashing workers (0 uses every CPU)")

	pf.StringVarP(&a.opts.output, "output", "o", "", "Output .torrent path (a bare name is placed next to the target)")
	pf.StringVarP(&a.opts.pieceLength, "piece-length", "l", "", "Piece length as a power of two exponent (14-27) or a size such as 256KB")
	pf.StringArrayVarP(&a.opts.announce, "announce", "a", nil, "Tracker URL, repeatable; an empty value clears the configured list")
	pf.BoolVarP(&a.opts.private, "private", "p", false, "Mark the torrent private")
	pf.StringVarP(&a.opts.comment, "comment", "c", "", "Comment stored in the torrent")
	pf.BoolVarP(&a.opts.noDate, "no-date", "d", false, "Omit the creation date")
	pf.IntVarP(&a.opts.walkMode, "walk-mode", "w", 0, "File order: 0 default, 1 alphabetical, 2 breadth-first, 3 levels, 4 size")
	pf.BoolVarP(&a.opts.force, "force", "f", false, "Overwrite an existing output file")

	pf.StringVar(&a.opts.extraBytes, "extra-bytes", "", "Files longer than recorded: ignore or fail")
	pf.BoolVar(&a.opts.copyMagnet, "copy", false, "Copy the magnet link to the clipboard")
	pf.StringArrayVarP(&a.opts.headers, "header", "H", nil, "Extra HTTP header for torrent URLs (\"Key: Value\"), repeatable")

	root.AddCommand(
		a.createCmd(),
		a.infoCmd(),
		a.verifyCmd(),
		a.historyCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads settings and configures logging, colour and history.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings(a.opts.configPath)
	if err != nil {
		return err
	}
	a.settings = settings

	tui.ConfigureColor(a.opts.noColor)

	utils.ConfigureDebug(config.GetLogsDir())
	utils.CleanupLogs(settings.LogRetentionCount)
	if src := settings.Source(); src != "" {
		utils.Debug("config loaded from %s", src)
	}

	state.Configure(config.GetHistoryDBPath())
	return nil
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	defer state.CloseDB()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	code := a.exitCode
	if err != nil {
		var mismatch *nameMismatchError
		switch {
		case errors.Is(err, source.ErrUsage):
			fmt.Fprintf(a.stderr, "Error: Please %s.\n", err)
		case errors.As(err, &mismatch):
			fmt.Fprintf(a.stderr, "Error: Target name '%s' does not match torrent name '%s'\n", mismatch.target, mismatch.torrent)
		default:
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		code = exitError
	}

	if a.opts.waitExit || a.settings.WaitExit {
		a.waitForEnter()
	}
	return code
}

func (a *app) waitForEnter() {
	fmt.Fprint(a.stdout, "Press Enter to exit...")
	_, _ = bufio.NewReader(a.stdin).ReadString('\n')
}

func (a *app) workers(cmd *cobra.Command) int {
	if cmd.Flags().Changed("workers") {
		return a.opts.workers
	}
	return a.settings.Workers
}

func (a *app) printf(format string, args ...any) {
	if !a.opts.quiet {
		fmt.Fprintf(a.stdout, format, args...)
	}
}

// Execute runs the root command with the process's standard streams.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	a.interactive = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	code := a.execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
