package tags

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"

	"github.com/llehouerou/undertow/internal/track"
)

// Read reads a music file's metadata into a track record. File size and the
// added date come from the filesystem; duration comes from the audio stream
// properties. A resolved catalog URI previously written to the comment tag
// is restored into the track's URI field.
func Read(path string) (*track.Track, error) {
	t, err := readPrimary(path)
	if err != nil {
		// dhowden/tag fails on some UTF-16 ID3 frames and odd containers
		t, err = readWithTaglib(path)
		if err != nil {
			return nil, err
		}
	}
	t.Path = path

	if info, err := os.Stat(path); err == nil {
		t.Size = info.Size()
		t.DateAdded = info.ModTime()
	}
	if props, err := taglib.ReadProperties(path); err == nil {
		t.Length = props.Length.Seconds()
	}

	t.URI, t.Comments = extractURI(t.Comments)
	return t, nil
}

func readPrimary(path string) (*track.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	title := m.Title()
	if title == "" {
		title = filepath.Base(path)
	}

	trackNum, trackTotal := m.Track()
	discNum, discTotal := m.Disc()

	t := &track.Track{
		Title:       title,
		Artists:     splitList(m.Artist()),
		Album:       m.Album(),
		AlbumArtist: m.AlbumArtist(),
		TrackNumber: trackNum,
		TrackTotal:  trackTotal,
		DiscNumber:  discNum,
		DiscTotal:   discTotal,
		Genres:      splitList(m.Genre()),
		Year:        m.Year(),
		Comments:    splitList(m.Comment()),
	}
	readExtended(path, t)
	return t, nil
}

func readWithTaglib(path string) (*track.Track, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	tags := taglibTags(raw)

	title := tags.get(taglib.Title)
	if title == "" {
		title = filepath.Base(path)
	}

	trackNum, trackTotal := parseNumberPair(tags.get(taglib.TrackNumber))
	if trackTotal == 0 {
		trackTotal = tags.getInt("TRACKTOTAL", "TOTALTRACKS")
	}
	discNum, discTotal := parseNumberPair(tags.get(taglib.DiscNumber))
	if discTotal == 0 {
		discTotal = tags.getInt("DISCTOTAL", "TOTALDISCS")
	}

	t := &track.Track{
		Title:       title,
		Artists:     tags.all(taglib.Artist),
		Album:       tags.get(taglib.Album),
		AlbumArtist: tags.get(taglib.AlbumArtist),
		TrackNumber: trackNum,
		TrackTotal:  trackTotal,
		DiscNumber:  discNum,
		DiscTotal:   discTotal,
		Genres:      tags.all(taglib.Genre),
		Year:        yearOf(tags.get(taglib.Date, taglib.OriginalDate)),
		BPM:         tags.getFloat(taglib.BPM),
		Compilation: tags.get(taglib.Compilation) == "1",
		Comments:    tags.all(taglib.Comment),
	}
	if len(t.Artists) == 1 {
		t.Artists = splitList(t.Artists[0])
	}
	return t, nil
}

// readExtended fills in tags dhowden/tag does not expose through its common
// interface.
func readExtended(path string, t *track.Track) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return
	}
	tags := taglibTags(raw)

	if t.BPM == 0 {
		t.BPM = tags.getFloat(taglib.BPM)
	}
	if !t.Compilation {
		t.Compilation = tags.get(taglib.Compilation) == "1"
	}
	if t.Key == "" {
		t.Key = tags.get("INITIALKEY", "KEY")
	}
	if t.TrackTotal == 0 {
		t.TrackTotal = tags.getInt("TRACKTOTAL", "TOTALTRACKS")
	}
	if t.DiscTotal == 0 {
		t.DiscTotal = tags.getInt("DISCTOTAL", "TOTALDISCS")
	}
	if t.Rating == 0 {
		if n, err := strconv.ParseFloat(tags.get("RATING", "FMPS_RATING"), 64); err == nil {
			t.Rating = n
		}
	}
}

// extractURI pulls a previously stored catalog URI out of the comment
// values. The remaining comments are returned without it.
func extractURI(comments []string) (uri string, rest []string) {
	for _, c := range comments {
		if uri == "" && strings.HasPrefix(c, uriPrefix) {
			uri = c
			continue
		}
		rest = append(rest, c)
	}
	return uri, rest
}
