package autoplaylist

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/llehouerou/undertow/internal/track"
)

// ReadM3U returns the track paths listed in an .m3u file, in file order.
// Comment and directive lines are skipped.
func ReadM3U(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	return paths, nil
}

// WriteM3U writes the tracks' paths to an .m3u file, one per line.
func WriteM3U(path string, tracks []*track.Track) error {
	var sb strings.Builder
	for _, t := range tracks {
		sb.WriteString(t.Path)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return nil
}

// MatchM3U resolves an .m3u file's paths against the library, returning the
// listed tracks in order. Paths not present in the library are returned as
// the second value; they are data, not an error.
func MatchM3U(path string, library []*track.Track) (found []*track.Track, missing []string, err error) {
	paths, err := ReadM3U(path)
	if err != nil {
		return nil, nil, err
	}

	byKey := make(map[string]*track.Track, len(library))
	for _, t := range library {
		byKey[track.Key(t)] = t
	}

	for _, p := range paths {
		if t, ok := byKey[strings.ToLower(p)]; ok {
			found = append(found, t)
		} else {
			missing = append(missing, p)
		}
	}
	return found, missing, nil
}
