package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/trtool/internal/engine/state"
	"github.com/surge-downloader/trtool/internal/engine/types"
	"github.com/surge-downloader/trtool/internal/source"
	"github.com/surge-downloader/trtool/internal/torrent"
	"github.com/surge-downloader/trtool/internal/tui"
	"github.com/surge-downloader/trtool/internal/utils"
)

// nameMismatchError is returned when the verify target's base name differs
// from the torrent's name.
type nameMismatchError struct {
	target, torrent string
}

func (e *nameMismatchError) Error() string {
	return fmt.Sprintf("target name %q does not match torrent name %q", e.target, e.torrent)
}

// reportWidth is the piece map width used on a terminal.
const reportWidth = 64

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.torrent> <target>",
		Short: "Verify downloaded data against a torrent",
		Long: `Verify downloaded data against a torrent.

The arguments may be given in either order. For a single-file torrent the
target is the file itself, otherwise it is the torrent's top directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := source.Resolve(args)
			if err != nil {
				return err
			}
			if plan.Action != source.ActionVerify {
				return fmt.Errorf("%w: expected a torrent and a target", source.ErrUsage)
			}
			return a.runVerify(cmd, plan.Torrent, plan.Kind, plan.Target)
		},
	}
}

func (a *app) runVerify(cmd *cobra.Command, src string, kind source.Kind, target string) error {
	policyName := a.settings.ExtraBytes
	if cmd.Flags().Changed("extra-bytes") {
		policyName = a.opts.extraBytes
	}
	policy, err := torrent.ParseExtraBytesPolicy(policyName)
	if err != nil {
		return err
	}

	meta, err := a.loadTorrent(cmd.Context(), src, kind)
	if err != nil {
		return err
	}
	if name := filepath.Base(filepath.Clean(target)); name != meta.Info.Name {
		return &nameMismatchError{target: name, torrent: meta.Info.Name}
	}

	a.printf("Torrent: %s\n", src)
	a.printf("Target:  %s\n", target)
	utils.Debug("verify: %s against %s (extra bytes %s)", target, src, policy)

	start := time.Now()
	var rep *torrent.Report
	err = a.withProgress(cmd.Context(), "Verifying", func(ctx context.Context, progress types.ProgressFunc) error {
		var err error
		rep, err = torrent.Verify(ctx, meta, target, nil, torrent.VerifyOptions{
			Workers:    a.workers(cmd),
			Progress:   progress,
			ExtraBytes: policy,
		})
		return err
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	width := 0
	if a.interactive {
		width = reportWidth
	}
	fmt.Fprint(a.stdout, tui.RenderReport(rep, width))
	a.printf("Checked %d pieces in %s\n", rep.PieceSummary.Total, elapsed.Round(time.Millisecond))

	torrentPath := src
	if kind == source.KindTorrentFile {
		if abs, err := filepath.Abs(src); err == nil {
			torrentPath = abs
		}
	}
	a.record(state.Record{
		Kind:         state.KindVerify,
		Name:         meta.Info.Name,
		InfoHash:     meta.HexHash(),
		TorrentPath:  torrentPath,
		TargetPath:   target,
		PieceLength:  meta.Info.PieceLength,
		TotalSize:    meta.Info.TotalLength(),
		Pieces:       rep.PieceSummary.Total,
		FailedPieces: rep.PieceSummary.Failed,
		FailedFiles:  rep.FileSummary.Failed,
		TimeTaken:    elapsed,
	})

	if !rep.OK() {
		a.exitCode = exitFailed
	}
	return nil
}
