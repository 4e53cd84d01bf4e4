package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/undertow/internal/autoplaylist"
	"github.com/llehouerou/undertow/internal/config"
	"github.com/llehouerou/undertow/internal/fuzzy"
	"github.com/llehouerou/undertow/internal/library"
	"github.com/llehouerou/undertow/internal/report"
	"github.com/llehouerou/undertow/internal/resolve"
	"github.com/llehouerou/undertow/internal/sorter"
	"github.com/llehouerou/undertow/internal/spotify"
	"github.com/llehouerou/undertow/internal/tags"
	"github.com/llehouerou/undertow/internal/track"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	app := &cli.Command{
		Name:    "undertow",
		Usage:   "Reconcile a local music collection with smart playlists and a remote catalog",
		Version: "0.1.0",
		Commands: []*cli.Command{
			scanCommand(logger),
			processCommand(logger),
			matchCommand(logger),
			reportCommand(logger),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatal(err)
	}
}

func scanCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan library sources into the local database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Rescan all files, ignoring modification times",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(cfg.LibrarySources) == 0 {
				return fmt.Errorf("no library_sources configured")
			}

			lib, err := library.Open()
			if err != nil {
				return err
			}
			defer lib.Close()

			var stats *library.ScanStats
			if cmd.Bool("full") {
				stats, err = lib.FullRefresh(cfg.LibrarySources)
			} else {
				stats, err = lib.Refresh(cfg.LibrarySources)
			}
			if err != nil {
				return err
			}

			logger.Info("scan complete",
				"scanned", stats.Scanned, "added", stats.Added,
				"updated", stats.Updated, "removed", stats.Removed)
			return nil
		},
	}
}

func processCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "Resolve smart playlist membership and write the results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "export",
				Usage: "Directory to write resolved playlists as .m3u files",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve membership but do not write anything",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.PlaylistFolder == "" {
				return fmt.Errorf("no playlist_folder configured")
			}
			sorter.SetIgnoreWords(cfg.StopWords)

			lib, err := library.Open()
			if err != nil {
				return err
			}
			defer lib.Close()

			all, err := lib.All()
			if err != nil {
				return err
			}

			playlists, err := loadPlaylists(cfg.PlaylistFolder)
			if err != nil {
				return err
			}

			for _, p := range playlists {
				if err := p.Refresh(all); err != nil {
					return err
				}
				name := playlistName(p.Path)
				logger.Info("processed playlist", "name", name, "tracks", len(p.Tracks))

				if cmd.Bool("dry-run") {
					continue
				}
				if err := p.Save(); err != nil {
					return err
				}
				if dir := cmd.String("export"); dir != "" {
					out := filepath.Join(dir, name+".m3u")
					if err := autoplaylist.WriteM3U(out, p.Tracks); err != nil {
						return err
					}
				}
			}

			// plain m3u playlists resolve against the library as they are
			m3us, err := listPlaylists(cfg.PlaylistFolder, ".m3u")
			if err != nil {
				return err
			}
			for _, path := range m3us {
				found, missing, err := autoplaylist.MatchM3U(path, all)
				if err != nil {
					return err
				}
				name := playlistName(path)
				logger.Info("processed playlist", "name", name,
					"tracks", len(found), "missing", len(missing))

				if cmd.Bool("dry-run") {
					continue
				}
				if dir := cmd.String("export"); dir != "" {
					out := filepath.Join(dir, name+".m3u")
					if err := autoplaylist.WriteM3U(out, found); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func matchCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Resolve unmatched tracks against the remote catalog",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "write-tags",
				Usage: "Also write resolved URIs into the files' comment tags",
			},
			&cli.BoolFlag{
				Name:  "mark-unavailable",
				Usage: "Record tracks the catalog could not resolve so later runs skip them",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.HasSpotifyConfig() {
				return fmt.Errorf("spotify client_id and client_secret must be configured")
			}

			lib, err := library.Open()
			if err != nil {
				return err
			}
			defer lib.Close()

			unmatched, err := lib.Unmatched()
			if err != nil {
				return err
			}
			if len(unmatched) == 0 {
				logger.Info("nothing to match")
				return nil
			}

			resolver := newResolver(cfg, logger)
			rep, err := resolver.ResolveGroups(ctx, groupByAlbum(unmatched))
			if err != nil {
				return err
			}

			for _, t := range unmatched {
				uri := t.URI
				if uri == "" {
					if !cmd.Bool("mark-unavailable") {
						continue
					}
					uri = tags.UnavailableURI
				}
				if err := lib.SetURI(t.Path, uri); err != nil {
					return err
				}
				if cmd.Bool("write-tags") {
					if err := tags.WriteURI(t.Path, uri); err != nil {
						logger.Warn("write tags failed", "path", t.Path, "err", err)
					}
				}
			}

			rep.Render(os.Stdout)
			return nil
		},
	}
}

func reportCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Show match coverage of the library",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lib, err := library.Open()
			if err != nil {
				return err
			}
			defer lib.Close()

			all, err := lib.All()
			if err != nil {
				return err
			}

			rep := &report.Report{}
			for _, g := range groupByAlbum(all) {
				result := report.Group{Name: g.Name, Total: len(g.Tracks)}
				for _, t := range g.Tracks {
					switch {
					case t.URI == tags.UnavailableURI:
						result.Skipped++
					case t.URI != "":
						result.Matched++
					default:
						result.Unmatched = append(result.Unmatched,
							fmt.Sprintf("%s - %s", t.Artist(), t.Title))
					}
				}
				rep.Add(result)
			}
			rep.Render(os.Stdout)
			return nil
		},
	}
}

func newResolver(cfg *config.Config, logger *log.Logger) *resolve.Resolver {
	match := cfg.GetMatchingConfig()

	scorer := fuzzy.NewScorer()
	scorer.Weights = fuzzy.Weights{
		Title:  match.Weights.Title,
		Artist: match.Weights.Artist,
		Album:  match.Weights.Album,
		Length: match.Weights.Length,
		Year:   match.Weights.Year,
	}
	scorer.MinScore = match.MinScore
	scorer.MaxScore = match.MaxScore
	scorer.YearRange = float64(match.YearRange)
	scorer.KaraokeWords = match.KaraokeWords

	client := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	r := resolve.New(client, scorer, logger)
	r.TitleFraction = match.TitleFraction
	r.PlaceholderAlbums = match.PlaceholderAlbums
	return r
}

// groupByAlbum buckets tracks by album name, in first-appearance order.
// Tracks with no album fall back to a single-track group.
func groupByAlbum(tracks []*track.Track) []resolve.Group {
	index := make(map[string]int)
	var groups []resolve.Group
	for _, t := range tracks {
		if t.Album == "" {
			groups = append(groups, resolve.Group{Name: t.Title, Tracks: []*track.Track{t}})
			continue
		}
		i, ok := index[t.Album]
		if !ok {
			i = len(groups)
			index[t.Album] = i
			groups = append(groups, resolve.Group{Name: t.Album, Album: true})
		}
		groups[i].Tracks = append(groups[i].Tracks, t)
	}
	return groups
}

func loadPlaylists(folder string) ([]*autoplaylist.Playlist, error) {
	paths, err := listPlaylists(folder, ".xautopf")
	if err != nil {
		return nil, err
	}

	var playlists []*autoplaylist.Playlist
	for _, path := range paths {
		p, err := autoplaylist.Load(path)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

func listPlaylists(folder, ext string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read playlist folder: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(folder, entry.Name()))
	}
	return paths, nil
}

func playlistName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
