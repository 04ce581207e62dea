package config

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/viper"

	"github.com/surge-downloader/trtool/internal/engine/types"
)

// Settings holds the user-configurable defaults read from config.toml.
// Keys are flat so config files written for older releases keep working.
type Settings struct {
	WaitExit          bool     `mapstructure:"wait_exit"`
	WalkMode          int      `mapstructure:"walk_mode"`
	Private           bool     `mapstructure:"private"`
	PieceLength       string   `mapstructure:"piece_length"`
	TrackerList       []string `mapstructure:"tracker_list"`
	Comment           string   `mapstructure:"comment"`
	NoCreationDate    bool     `mapstructure:"no_creation_date"`
	Workers           int      `mapstructure:"workers"`
	ExtraBytes        string   `mapstructure:"extra_bytes"`
	History           bool     `mapstructure:"history"`
	LogRetentionCount int      `mapstructure:"log_retention_count"`

	source string
}

// SettingMeta describes a single setting for the config listing.
type SettingMeta struct {
	Key         string
	Description string
	Type        string // "string", "int", "bool", "size", "list"
}

// GetSettingsMetadata returns metadata for all settings in display order.
func GetSettingsMetadata() []SettingMeta {
	return []SettingMeta{
		{Key: "wait_exit", Description: "Wait for Enter before exiting.", Type: "bool"},
		{Key: "walk_mode", Description: "File ordering when creating (0 default, 1 alphabetical, 2 breadth-first, 3 levels, 4 size).", Type: "int"},
		{Key: "private", Description: "Mark new torrents private.", Type: "bool"},
		{Key: "piece_length", Description: "Piece length in bytes or as a size (e.g. 256KB). Must be a power of two.", Type: "size"},
		{Key: "tracker_list", Description: "Announce URLs, one tier each.", Type: "list"},
		{Key: "comment", Description: "Comment stored in new torrents.", Type: "string"},
		{Key: "no_creation_date", Description: "Omit the creation date from new torrents.", Type: "bool"},
		{Key: "workers", Description: "Hashing workers (0 uses every CPU).", Type: "int"},
		{Key: "extra_bytes", Description: "Verification of files longer than expected: ignore or fail.", Type: "string"},
		{Key: "history", Description: "Record builds and verifications in the history database.", Type: "bool"},
		{Key: "log_retention_count", Description: "Number of recent debug logs to keep.", Type: "int"},
	}
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		WalkMode:          0,
		PieceLength:       strconv.Itoa(types.DefaultPieceLength),
		TrackerList:       []string{},
		ExtraBytes:        "ignore",
		History:           true,
		LogRetentionCount: 5,
	}
}

// Source returns the config file the settings were read from, or "" for defaults.
func (s *Settings) Source() string {
	return s.source
}

// Values returns the settings keyed by their config.toml names.
func (s *Settings) Values() map[string]any {
	var pieceLength any = s.PieceLength
	if n, err := strconv.ParseInt(s.PieceLength, 10, 64); err == nil {
		pieceLength = n
	}
	trackers := s.TrackerList
	if trackers == nil {
		trackers = []string{}
	}
	return map[string]any{
		"wait_exit":           s.WaitExit,
		"walk_mode":           s.WalkMode,
		"private":             s.Private,
		"piece_length":        pieceLength,
		"tracker_list":        trackers,
		"comment":             s.Comment,
		"no_creation_date":    s.NoCreationDate,
		"workers":             s.Workers,
		"extra_bytes":         s.ExtraBytes,
		"history":             s.History,
		"log_retention_count": s.LogRetentionCount,
	}
}

// LoadSettings reads path, falling back to the per-user config file.
// Returns defaults if neither exists.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("toml")
	for key, val := range DefaultSettings().Values() {
		v.SetDefault(key, val)
	}

	explicit := false
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			explicit = true
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if !explicit {
		v.SetConfigName("config")
		v.AddConfigPath(GetTrtoolDir())
	}

	source := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		source = v.ConfigFileUsed()
	}

	s := DefaultSettings()
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	s.source = source
	return s, nil
}

// SaveSettings saves settings to path atomically.
func SaveSettings(s *Settings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	v := viper.New()
	for key, val := range s.Values() {
		v.Set(key, val)
	}

	// Atomic write: write to temp file, then rename. The temp name keeps a
	// .toml extension so viper picks the encoder.
	tempPath := path + ".tmp.toml"
	if err := v.WriteConfigAs(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	return os.Rename(tempPath, path)
}

// ParsePieceLength accepts a byte count ("65536") or a size ("256KB").
func ParsePieceLength(s string) (int64, error) {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid piece length %q: %w", s, err)
	}
	if v > 1<<62 {
		return 0, fmt.Errorf("invalid piece length %q: too large", s)
	}
	return int64(v), nil
}

// PieceExponent converts a piece length to its power-of-two exponent.
func PieceExponent(length int64) (uint8, error) {
	if length <= 0 || length&(length-1) != 0 {
		return 0, fmt.Errorf("piece length %d is not a power of two", length)
	}
	return uint8(bits.TrailingZeros64(uint64(length))), nil
}

// BuildSettings is the builder configuration derived from Settings.
type BuildSettings struct {
	PieceSizeExponent   uint8
	Private             bool
	AnnounceGroups      [][]string
	Comment             string
	IncludeCreationDate bool
	WalkMode            int
	Workers             int
}

// AnnounceGroups puts every non-empty tracker in its own tier.
func AnnounceGroups(trackers []string) [][]string {
	var groups [][]string
	for _, tr := range trackers {
		tr = strings.TrimSpace(tr)
		if tr == "" {
			continue
		}
		groups = append(groups, []string{tr})
	}
	return groups
}

// BuildSettings converts the loaded settings into builder configuration.
func (s *Settings) BuildSettings() (BuildSettings, error) {
	length, err := ParsePieceLength(s.PieceLength)
	if err != nil {
		return BuildSettings{}, err
	}
	exp, err := PieceExponent(length)
	if err != nil {
		return BuildSettings{}, err
	}
	if s.WalkMode < 0 || s.WalkMode > 4 {
		return BuildSettings{}, fmt.Errorf("walk_mode must be between 0 and 4, got %d", s.WalkMode)
	}

	return BuildSettings{
		PieceSizeExponent:   exp,
		Private:             s.Private,
		AnnounceGroups:      AnnounceGroups(s.TrackerList),
		Comment:             s.Comment,
		IncludeCreationDate: !s.NoCreationDate,
		WalkMode:            s.WalkMode,
		Workers:             s.Workers,
	}, nil
}
