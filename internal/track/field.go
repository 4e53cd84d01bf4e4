package track

import "fmt"

// Field identifies a track metadata field. The numeric values are the field
// codes MusicBee uses in its auto-playlist files; changing them breaks
// compatibility with that format.
type Field int

const (
	FieldNone        Field = 0
	FieldLength      Field = 16
	FieldAlbum       Field = 30
	FieldAlbumArtist Field = 31
	FieldArtist      Field = 32
	FieldYear        Field = 35
	FieldComments    Field = 44
	FieldDiscNumber  Field = 52
	FieldDiscTotal   Field = 54
	FieldGenres      Field = 59
	FieldTitle       Field = 65
	FieldRating      Field = 75
	FieldBPM         Field = 85
	FieldTrackNumber Field = 86
	FieldTrackTotal  Field = 87
	FieldExt         Field = 100
	FieldPath        Field = 106
	FieldFolder      Field = 179
	FieldFilename    Field = 3
	FieldSize        Field = 7
	FieldDateAdded   Field = 12
	FieldLastPlayed  Field = 13
	FieldPlayCount   Field = 14

	// No MusicBee mapping exists for these; the codes are local.
	FieldKey         Field = 903
	FieldCompilation Field = 904
	FieldURI         Field = 920
)

var fieldNames = map[Field]string{
	FieldNone:        "none",
	FieldTitle:       "title",
	FieldArtist:      "artist",
	FieldAlbum:       "album",
	FieldAlbumArtist: "album_artist",
	FieldTrackNumber: "track_number",
	FieldTrackTotal:  "track_total",
	FieldDiscNumber:  "disc_number",
	FieldDiscTotal:   "disc_total",
	FieldGenres:      "genres",
	FieldYear:        "year",
	FieldBPM:         "bpm",
	FieldKey:         "key",
	FieldCompilation: "compilation",
	FieldComments:    "comments",
	FieldLength:      "length",
	FieldSize:        "size",
	FieldRating:      "rating",
	FieldDateAdded:   "date_added",
	FieldLastPlayed:  "last_played",
	FieldPlayCount:   "play_count",
	FieldURI:         "uri",
	FieldPath:        "path",
	FieldFolder:      "folder",
	FieldFilename:    "filename",
	FieldExt:         "ext",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// musicBeeFieldNames maps MusicBee's rule-language field names to fields.
// Unrecognised names are a configuration error surfaced at playlist load.
var musicBeeFieldNames = map[string]Field{
	"None":           FieldNone,
	"Title":          FieldTitle,
	"ArtistPeople":   FieldArtist,
	"Album":          FieldAlbum,
	"Album Artist":   FieldAlbumArtist,
	"TrackNo":        FieldTrackNumber,
	"TrackCount":     FieldTrackTotal,
	"GenreSplits":    FieldGenres,
	"Year":           FieldYear,
	"BeatsPerMin":    FieldBPM,
	"DiscNo":         FieldDiscNumber,
	"DiscCount":      FieldDiscTotal,
	"Comment":        FieldComments,
	"FileDuration":   FieldLength,
	"Rating":         FieldRating,
	"FolderName":     FieldFolder,
	"FilePath":       FieldPath,
	"FileName":       FieldFilename,
	"FileExtension":  FieldExt,
	"FileDateAdded":  FieldDateAdded,
	"FileLastPlayed": FieldLastPlayed,
	"FilePlayCount":  FieldPlayCount,
}

var musicBeeNamesByField = func() map[Field]string {
	m := make(map[Field]string, len(musicBeeFieldNames))
	for name, f := range musicBeeFieldNames {
		m[f] = name
	}
	return m
}()

// ParseFieldName resolves a MusicBee rule-language field name.
func ParseFieldName(name string) (Field, error) {
	f, ok := musicBeeFieldNames[name]
	if !ok {
		return FieldNone, fmt.Errorf("unrecognised field name: %q", name)
	}
	return f, nil
}

// MusicBeeFieldName returns the rule-language name for a field.
func MusicBeeFieldName(f Field) (string, error) {
	name, ok := musicBeeNamesByField[f]
	if !ok {
		return "", fmt.Errorf("field %s has no rule-language name", f)
	}
	return name, nil
}

// FieldByCode resolves a MusicBee numeric field code as used by the sort
// settings of auto-playlist files.
func FieldByCode(code int) (Field, error) {
	f := Field(code)
	if _, ok := fieldNames[f]; !ok {
		return FieldNone, fmt.Errorf("unrecognised field code: %d", code)
	}
	return f, nil
}
