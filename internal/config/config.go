package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music files
	PlaylistFolder string   `koanf:"playlist_folder"` // folder holding .xautopf/.m3u files
	StopWords      []string `koanf:"stop_words"`      // leading words stripped from sort keys (default: The, A)

	Spotify  SpotifyConfig  `koanf:"spotify"`
	Matching MatchingConfig `koanf:"matching"`
}

// SpotifyConfig holds the remote catalog credentials.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

// MatchingConfig tunes the fuzzy resolution of tracks against the catalog.
type MatchingConfig struct {
	MinScore  float64 `koanf:"min_score"`  // acceptance floor (0-1, default: 0.1)
	MaxScore  float64 `koanf:"max_score"`  // early-stop threshold (0-1, default: 0.8)
	YearRange int     `koanf:"year_range"` // year difference scoring zero (default: 10)

	// TitleFraction is the share of title words that must appear in an
	// album candidate track to align it (default: 0.6).
	TitleFraction float64 `koanf:"title_fraction"`

	// KaraokeWords mark candidates to reject outright (default:
	// karaoke, backing, instrumental).
	KaraokeWords []string `koanf:"karaoke_words"`

	// PlaceholderAlbums are album name prefixes treated as download
	// buckets, never used in search queries (default: downloads).
	PlaceholderAlbums []string `koanf:"placeholder_albums"`

	// Weights set the share each tag comparison contributes to a
	// candidate's score. Omitted or non-positive entries keep their
	// defaults.
	Weights WeightsConfig `koanf:"weights"`
}

// WeightsConfig mirrors the scorer's weight table.
type WeightsConfig struct {
	Title  float64 `koanf:"title"`  // default: 0.4
	Artist float64 `koanf:"artist"` // default: 0.25
	Album  float64 `koanf:"album"`  // default: 0.15
	Length float64 `koanf:"length"` // default: 0.1
	Year   float64 `koanf:"year"`   // default: 0.1
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.PlaylistFolder = expandPath(cfg.PlaylistFolder)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/undertow/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "undertow", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasSpotifyConfig returns true if catalog credentials are configured.
func (c *Config) HasSpotifyConfig() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// GetMatchingConfig returns the matching configuration with defaults
// applied.
func (c *Config) GetMatchingConfig() MatchingConfig {
	cfg := c.Matching

	if cfg.MinScore <= 0 || cfg.MinScore > 1 {
		cfg.MinScore = 0.1
	}
	if cfg.MaxScore <= 0 || cfg.MaxScore > 1 {
		cfg.MaxScore = 0.8
	}
	if cfg.YearRange <= 0 {
		cfg.YearRange = 10
	}
	if cfg.TitleFraction <= 0 || cfg.TitleFraction > 1 {
		cfg.TitleFraction = 0.6
	}
	if len(cfg.KaraokeWords) == 0 {
		cfg.KaraokeWords = []string{"karaoke", "backing", "instrumental"}
	}
	if len(cfg.PlaceholderAlbums) == 0 {
		cfg.PlaceholderAlbums = []string{"downloads"}
	}
	if cfg.Weights.Title <= 0 {
		cfg.Weights.Title = 0.4
	}
	if cfg.Weights.Artist <= 0 {
		cfg.Weights.Artist = 0.25
	}
	if cfg.Weights.Album <= 0 {
		cfg.Weights.Album = 0.15
	}
	if cfg.Weights.Length <= 0 {
		cfg.Weights.Length = 0.1
	}
	if cfg.Weights.Year <= 0 {
		cfg.Weights.Year = 0.1
	}

	return cfg
}
