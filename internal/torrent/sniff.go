package torrent

import (
	"errors"
	"fmt"

	"github.com/h2non/filetype"
)

// explainMalformed adds a hint about what data actually is when it failed
// to decode as bencode and looks like some other known format.
func explainMalformed(data []byte, err error) error {
	if !errors.Is(err, ErrMalformedBencode) {
		return err
	}
	kind, _ := filetype.Match(data)
	if kind == filetype.Unknown {
		return err
	}
	return fmt.Errorf("%w (content looks like %s, not a torrent)", err, kind.MIME.Value)
}
