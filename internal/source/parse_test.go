package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const magnet = "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567"

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"", KindUnknown},
		{"   ", KindUnknown},
		{magnet, KindMagnet},
		{"https://example.com/file.torrent", KindTorrentURL},
		{"https://example.com/file.torrent?k=1", KindTorrentURL},
		{"https://example.com/page.html", KindUnknown},
		{"ubuntu.iso.torrent", KindTorrentFile},
		{"/srv/Movies/X.TORRENT", KindTorrentFile},
		{"./payload", KindTarget},
		{"payload.iso", KindTarget},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.in))
		})
	}
}

func TestIsMagnetRequiresPayload(t *testing.T) {
	assert.True(t, IsMagnet(magnet))
	assert.False(t, IsMagnet("magnet:"))
	assert.False(t, IsMagnet("https://example.com"))
}

func TestResolve_SingleArgument(t *testing.T) {
	p, err := Resolve([]string{"payload"})
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, p.Action)
	assert.Equal(t, "payload", p.Target)

	p, err = Resolve([]string{"x.torrent"})
	require.NoError(t, err)
	assert.Equal(t, ActionInfo, p.Action)
	assert.Equal(t, KindTorrentFile, p.Kind)

	p, err = Resolve([]string{magnet})
	require.NoError(t, err)
	assert.Equal(t, ActionInfo, p.Action)
	assert.Equal(t, KindMagnet, p.Kind)

	_, err = Resolve([]string{"https://example.com/"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestResolve_VerifyEitherOrder(t *testing.T) {
	for _, args := range [][]string{{"x.torrent", "payload"}, {"payload", "x.torrent"}} {
		p, err := Resolve(args)
		require.NoError(t, err)
		assert.Equal(t, ActionVerify, p.Action)
		assert.Equal(t, "x.torrent", p.Torrent)
		assert.Equal(t, "payload", p.Target)
	}

	p, err := Resolve([]string{"https://example.com/x.torrent", "payload"})
	require.NoError(t, err)
	assert.Equal(t, KindTorrentURL, p.Kind)
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve(nil)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = Resolve([]string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrUsage)

	_, err = Resolve([]string{"a", "b"})
	assert.ErrorIs(t, err, ErrNoTorrent)

	_, err = Resolve([]string{magnet, "payload"})
	assert.ErrorIs(t, err, ErrMagnetVerify)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "info", ActionInfo.String())
	assert.Equal(t, "verify", ActionVerify.String())
	assert.Equal(t, "unknown", Action(9).String())
}
