package autoplaylist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llehouerou/undertow/internal/track"
)

func TestReadM3U(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.m3u")
	content := "#EXTM3U\n#EXTINF:284,Radiohead - Airbag\n/m/airbag.mp3\n\n/m/creep.mp3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write m3u: %v", err)
	}

	paths, err := ReadM3U(path)
	if err != nil {
		t.Fatalf("ReadM3U() error = %v", err)
	}
	if len(paths) != 2 || paths[0] != "/m/airbag.mp3" || paths[1] != "/m/creep.mp3" {
		t.Errorf("ReadM3U() = %v", paths)
	}
}

func TestReadM3UMissingFile(t *testing.T) {
	if _, err := ReadM3U(filepath.Join(t.TempDir(), "missing.m3u")); err == nil {
		t.Fatal("ReadM3U() expected error for missing file")
	}
}

func TestWriteM3U(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.m3u")
	tracks := []*track.Track{
		{Path: "/m/airbag.mp3"},
		{Path: "/m/creep.mp3"},
	}

	if err := WriteM3U(path, tracks); err != nil {
		t.Fatalf("WriteM3U() error = %v", err)
	}

	paths, err := ReadM3U(path)
	if err != nil {
		t.Fatalf("ReadM3U() error = %v", err)
	}
	if len(paths) != 2 || paths[0] != "/m/airbag.mp3" {
		t.Errorf("round trip = %v", paths)
	}
}

func TestMatchM3U(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.m3u")
	content := "/M/Airbag.mp3\n/m/gone.mp3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write m3u: %v", err)
	}

	library := []*track.Track{
		{Title: "Airbag", Path: "/m/airbag.mp3"},
		{Title: "Creep", Path: "/m/creep.mp3"},
	}

	found, missing, err := MatchM3U(path, library)
	if err != nil {
		t.Fatalf("MatchM3U() error = %v", err)
	}
	// paths resolve case-insensitively
	if len(found) != 1 || found[0].Title != "Airbag" {
		t.Errorf("found = %v", found)
	}
	if len(missing) != 1 || missing[0] != "/m/gone.mp3" {
		t.Errorf("missing = %v", missing)
	}
}
