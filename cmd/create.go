package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/trtool/internal/config"
	"github.com/surge-downloader/trtool/internal/engine/state"
	"github.com/surge-downloader/trtool/internal/engine/types"
	"github.com/surge-downloader/trtool/internal/torrent"
	"github.com/surge-downloader/trtool/internal/tui"
	"github.com/surge-downloader/trtool/internal/utils"
	"github.com/surge-downloader/trtool/internal/version"
	"github.com/surge-downloader/trtool/internal/walk"
)

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <target>",
		Short: "Create a .torrent from a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd, args[0])
		},
	}
}

// createOptions merges config.toml defaults with the flags given on the
// command line.
func (a *app) createOptions(cmd *cobra.Command) (torrent.BuildOptions, walk.Mode, error) {
	flags := cmd.Flags()
	bs, err := a.settings.BuildSettings()
	if err != nil {
		return torrent.BuildOptions{}, 0, fmt.Errorf("config: %w", err)
	}

	pieceLength, err := torrent.PieceLengthFromExponent(int(bs.PieceSizeExponent))
	if err != nil {
		return torrent.BuildOptions{}, 0, fmt.Errorf("config: %w", err)
	}
	if flags.Changed("piece-length") {
		if pieceLength, err = parsePieceFlag(a.opts.pieceLength); err != nil {
			return torrent.BuildOptions{}, 0, err
		}
	}

	if flags.Changed("private") {
		bs.Private = a.opts.private
	}
	if flags.Changed("comment") {
		bs.Comment = a.opts.comment
	}
	if flags.Changed("no-date") {
		bs.IncludeCreationDate = !a.opts.noDate
	}
	if flags.Changed("walk-mode") {
		bs.WalkMode = a.opts.walkMode
	}
	if flags.Changed("announce") {
		// Flags replace the configured list; a lone "" leaves no trackers.
		bs.AnnounceGroups = config.AnnounceGroups(a.opts.announce)
	}

	mode, err := walk.ParseMode(bs.WalkMode)
	if err != nil {
		return torrent.BuildOptions{}, 0, err
	}

	opts := torrent.BuildOptions{
		PieceLength:    pieceLength,
		Private:        bs.Private,
		AnnounceGroups: bs.AnnounceGroups,
		Comment:        bs.Comment,
		CreatedBy:      version.CreatedBy(),
		Encoding:       "UTF-8",
		Workers:        a.workers(cmd),
	}
	if bs.IncludeCreationDate {
		now := time.Now()
		opts.CreationDate = &now
	}
	return opts, mode, nil
}

func (a *app) runCreate(cmd *cobra.Command, target string) error {
	opts, mode, err := a.createOptions(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(target); err != nil {
		return &torrent.IOError{Path: target, Err: fmt.Errorf("%w: %w", torrent.ErrRootInaccessible, err)}
	}
	outPath, err := resolveOutputPath(target, a.opts.output)
	if err != nil {
		return err
	}
	if !a.opts.force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%w: %s (use -f to overwrite)", torrent.ErrOutputExists, outPath)
		}
	}

	a.printf("Target:  %s\n", target)
	a.printf("Torrent: %s\n", outPath)
	a.printf("Piece Length: %d bytes [%s]\n", opts.PieceLength, utils.ConvertBytesToHumanReadable(opts.PieceLength))
	if opts.Private {
		a.printf("Private Torrent\n")
	}
	utils.Debug("create: %s -> %s (mode %s, piece length %d)", target, outPath, mode, opts.PieceLength)

	start := time.Now()
	var built *torrent.Built
	err = a.withProgress(cmd.Context(), "Hashing", func(ctx context.Context, progress types.ProgressFunc) error {
		opts.Progress = progress
		var err error
		built, err = torrent.BuildFromPath(ctx, nil, target, mode, nil, opts)
		return err
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := torrent.WriteTorrentFile(outPath, built.Bytes, a.opts.force); err != nil {
		return err
	}

	meta := built.Meta
	a.printf("Processed %d pieces in %s\n", meta.Info.NumPieces(), elapsed.Round(time.Millisecond))
	fmt.Fprintf(a.stdout, "%s %s\n", tui.LabelStyle.Render("Info Hash:"), tui.HashStyle.Render(meta.HexHash()))

	a.record(state.Record{
		Kind:        state.KindBuild,
		Name:        meta.Info.Name,
		InfoHash:    meta.HexHash(),
		TorrentPath: outPath,
		TargetPath:  target,
		PieceLength: meta.Info.PieceLength,
		TotalSize:   meta.Info.TotalLength(),
		Pieces:      meta.Info.NumPieces(),
		TimeTaken:   elapsed,
	})
	return nil
}

// record writes r to the history database when history is enabled. A
// failure is logged, never fatal.
func (a *app) record(r state.Record) {
	if !a.settings.History {
		return
	}
	if _, err := state.AddRecord(r); err != nil {
		utils.Debug("history: %v", err)
	}
}
