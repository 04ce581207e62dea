package torrent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/vfaronov/httpheader"

	"github.com/surge-downloader/trtool/internal/utils"
)

// MaxTorrentSize bounds how much FetchTorrent will read from a response.
const MaxTorrentSize = 64 << 20

// FetchTorrent downloads a .torrent over HTTP and parses it.
func FetchTorrent(ctx context.Context, url string, headers map[string]string) (*TorrentMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("torrent fetch error: %s - %s", resp.Status, string(bytes.TrimSpace(body)))
	}
	if mtype, _ := httpheader.ContentType(resp.Header); mtype == "text/html" {
		return nil, fmt.Errorf("torrent fetch error: server returned an HTML page")
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxTorrentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxTorrentSize {
		return nil, fmt.Errorf("torrent fetch error: response larger than %s", utils.ConvertBytesToHumanReadable(MaxTorrentSize))
	}
	utils.Debug("fetch: %s (%d bytes)", url, len(data))
	meta, err := ParseTorrent(data)
	if err != nil {
		return nil, explainMalformed(data, err)
	}
	return meta, nil
}
