// Package tags reads music file metadata into track records and writes
// resolved catalog URIs back into the file's comment tag.
package tags

import (
	"strconv"
	"strings"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
	ExtWMA  = ".wma"
)

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(path)
	if idx := strings.LastIndex(ext, "."); idx >= 0 {
		ext = ext[idx:]
	} else {
		return false
	}
	switch ext {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtM4A, ExtMP4, ExtWMA:
		return true
	}
	return false
}

// taglibTags wraps a taglib result map with helper methods.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if
// not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// all returns every value stored under the given key.
func (t taglibTags) all(key string) []string {
	return t[key]
}

// getInt returns the first value for any of the given keys as an integer,
// or 0 if not found or invalid.
func (t taglibTags) getInt(keys ...string) int {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			if n, err := strconv.Atoi(values[0]); err == nil {
				return n
			}
		}
	}
	return 0
}

// getFloat returns the first value as a float, or 0 if not found or invalid.
func (t taglibTags) getFloat(key string) float64 {
	if values, ok := t[key]; ok && len(values) > 0 {
		if n, err := strconv.ParseFloat(values[0], 64); err == nil {
			return n
		}
	}
	return 0
}

// parseNumberPair parses a track/disc number that may be "N" or "N/M" format.
func parseNumberPair(s string) (num, total int) {
	if s == "" {
		return 0, 0
	}
	if idx := strings.Index(s, "/"); idx > 0 {
		num, _ = strconv.Atoi(s[:idx])
		total, _ = strconv.Atoi(s[idx+1:])
		return num, total
	}
	num, _ = strconv.Atoi(s)
	return num, 0
}

// splitList splits a multi-value tag on the common separators.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '\x00'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// yearOf extracts the year from a date string like "2011-03-04" or "2011".
func yearOf(date string) int {
	if len(date) > 4 {
		date = date[:4]
	}
	y, _ := strconv.Atoi(date)
	return y
}
