package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/trtool/internal/clipboard"
	"github.com/surge-downloader/trtool/internal/engine/state"
	"github.com/surge-downloader/trtool/internal/source"
	"github.com/surge-downloader/trtool/internal/torrent"
	"github.com/surge-downloader/trtool/internal/tui"
	"github.com/surge-downloader/trtool/internal/utils"
)

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file.torrent | url | magnet]",
		Short: "Show what a torrent or magnet link describes",
		Long: `Show what a torrent or magnet link describes.

Without an argument the clipboard is checked for a torrent URL or magnet link.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) == 1 {
				src = source.Normalize(args[0])
			} else if src = clipboard.ReadSource(); src == "" {
				return errors.New("no torrent given and none found on the clipboard")
			} else {
				a.printf("Using %s from clipboard\n", src)
			}
			kind := source.KindOf(src)
			if !kind.IsTorrent() {
				return fmt.Errorf("%w: %s", source.ErrNoTorrent, src)
			}
			return a.runInfo(cmd, src, kind)
		},
	}
}

// loadTorrent reads a local .torrent or downloads one from a URL.
func (a *app) loadTorrent(ctx context.Context, src string, kind source.Kind) (*torrent.TorrentMeta, error) {
	switch kind {
	case source.KindTorrentFile:
		return torrent.ReadTorrentFile(src)
	case source.KindTorrentURL:
		headers, err := parseHeaders(a.opts.headers)
		if err != nil {
			return nil, err
		}
		if len(headers) > 0 {
			utils.Debug("fetch: %s with headers %s", src, describeHeaders(headers))
		}
		return torrent.FetchTorrent(ctx, src, headers)
	case source.KindMagnet:
		return nil, source.ErrMagnetVerify
	}
	return nil, fmt.Errorf("%w: %s", source.ErrUnsupported, src)
}

func (a *app) runInfo(cmd *cobra.Command, src string, kind source.Kind) error {
	if kind == source.KindMagnet {
		m, err := torrent.ParseMagnet(src)
		if err != nil {
			return fmt.Errorf("invalid magnet link: %w", err)
		}
		fmt.Fprint(a.stdout, tui.RenderMagnet(m))
		return a.copyMagnet(src)
	}

	meta, err := a.loadTorrent(cmd.Context(), src, kind)
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, tui.RenderInfo(meta))

	magnet := meta.MagnetURI()
	fmt.Fprintf(a.stdout, "\n%s %s\n", tui.LabelStyle.Render("Magnet:"), magnet)
	a.printLastVerify(meta.HexHash())
	return a.copyMagnet(magnet)
}

func (a *app) copyMagnet(uri string) error {
	if !a.opts.copyMagnet {
		return nil
	}
	if err := clipboard.Copy(uri); err != nil {
		return fmt.Errorf("failed to copy magnet link: %w", err)
	}
	a.printf("Magnet link copied to clipboard.\n")
	return nil
}

// printLastVerify shows the most recent verification of hash, if any.
func (a *app) printLastVerify(hash string) {
	if !a.settings.History || a.opts.quiet {
		return
	}
	rec, err := state.LatestByHash(hash, state.KindVerify)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			utils.Debug("history: %v", err)
		}
		return
	}
	verdict := tui.PassStyle.Render("OK")
	if !rec.OK() {
		verdict = tui.FailStyle.Render(fmt.Sprintf("%d failed pieces, %d failed files", rec.FailedPieces, rec.FailedFiles))
	}
	fmt.Fprintf(a.stdout, "%s %s (%s) %s\n",
		tui.LabelStyle.Render("Last verified:"),
		rec.CreatedAt.Local().Format(time.DateTime),
		rec.TargetPath,
		verdict)
}
