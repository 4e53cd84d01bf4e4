package tags

import (
	"fmt"
	"strings"

	"go.senan.xyz/taglib"
)

// Resolved catalog URIs live in the comment tag so every player and tagger
// round-trips them untouched.
const uriPrefix = "spotify:"

// UnavailableURI marks a track confirmed absent from the remote catalog, so
// later runs do not search for it again.
const UnavailableURI = "spotify:track:unavailable"

// WriteURI stores the catalog URI in the file's comment tag, replacing any
// URI comment already present and preserving other comment values.
func WriteURI(path, uri string) error {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return fmt.Errorf("read tags: %w", err)
	}

	var comments []string
	for _, c := range raw[taglib.Comment] {
		if !strings.HasPrefix(c, uriPrefix) {
			comments = append(comments, c)
		}
	}
	if uri != "" {
		comments = append(comments, uri)
	}

	// No Clear option: only the comment key is replaced, everything else
	// in the file stays as is.
	err = taglib.WriteTags(path, map[string][]string{taglib.Comment: comments}, 0)
	if err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}
