package clipboard

import (
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
)

var (
	clipboardReadAll  = clipboard.ReadAll
	clipboardWriteAll = clipboard.WriteAll
)

const maxSourceLength = 8192

// Validator accepts clipboard text that names a torrent: an http(s) link to a
// .torrent file or a magnet link with an exact topic.
type Validator struct {
	allowedSchemes map[string]bool
}

func NewValidator() *Validator {
	return &Validator{
		allowedSchemes: map[string]bool{"http": true, "https": true, "magnet": true},
	}
}

func (v *Validator) ExtractSource(text string) string {
	text = strings.TrimSpace(text)

	// Quick reject: too long or spans several lines
	if text == "" || len(text) > maxSourceLength || strings.ContainsAny(text, "\n\r") {
		return ""
	}

	parsed, err := url.Parse(text)
	if err != nil || !v.allowedSchemes[strings.ToLower(parsed.Scheme)] {
		return ""
	}

	switch strings.ToLower(parsed.Scheme) {
	case "magnet":
		if !strings.Contains(strings.ToLower(parsed.RawQuery), "xt=urn:btih:") {
			return ""
		}
	default:
		if parsed.Host == "" || !strings.HasSuffix(strings.ToLower(parsed.Path), ".torrent") {
			return ""
		}
	}

	return text
}

// ReadSource returns the torrent link on the clipboard, or "".
func ReadSource() string {
	text, err := clipboardReadAll()
	if err != nil {
		return ""
	}
	return NewValidator().ExtractSource(text)
}

// Copy places text on the system clipboard.
func Copy(text string) error {
	return clipboardWriteAll(text)
}
