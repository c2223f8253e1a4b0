package tags

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// knownKeys maps raw tag keys (ID3 frame names, Vorbis comment names, and
// ffprobe's lowercase spellings) to canonical names. Display names are
// derived from the canonical name.
var knownKeys = map[string]string{
	"tit2":           "title",
	"title":          "title",
	"tpe1":           "artist",
	"artist":         "artist",
	"tpe2":           "album artist",
	"album_artist":   "album artist",
	"albumartist":    "album artist",
	"talb":           "album",
	"album":          "album",
	"tcon":           "genre",
	"genre":          "genre",
	"tdrc":           "date",
	"tyer":           "date",
	"date":           "date",
	"trck":           "track",
	"track":          "track",
	"tpos":           "disc",
	"disc":           "disc",
	"tcom":           "composer",
	"composer":       "composer",
	"tpub":           "publisher",
	"publisher":      "publisher",
	"tbpm":           "bpm",
	"bpm":            "bpm",
	"tsrc":           "isrc",
	"isrc":           "isrc",
	"comm":           "comment",
	"comment":        "comment",
	"uslt":           "lyrics",
	"lyrics":         "lyrics",
	"unsyncedlyrics": "lyrics",
	"tenc":           "encoded by",
	"encoded_by":     "encoded by",
	"encoder":        "encoder",
	"tcop":           "copyright",
	"copyright":      "copyright",
	"tlan":           "language",
	"language":       "language",
}

// binaryKeys identifies picture and other binary frames that must never be
// rendered as text.
var binaryKeys = map[string]struct{}{
	"apic":                   {},
	"pic":                    {},
	"covr":                   {},
	"cover":                  {},
	"metadata_block_picture": {},
}

var displayCaser = cases.Title(language.English)

// lookupKey resolves a raw tag key into its canonical lowercase name, a
// display name, and whether the tag carries binary data.
func lookupKey(raw string) (name, display string, binary bool) {
	folded := strings.ToLower(strings.TrimSpace(raw))

	if _, ok := binaryKeys[folded]; ok || strings.HasPrefix(folded, "apic") {
		return folded, raw, true
	}

	if canonical, ok := knownKeys[folded]; ok {
		return canonical, displayCaser.String(canonical), false
	}

	// Unknown keys keep their spelling, cleaned up for display.
	cleaned := strings.ReplaceAll(folded, "_", " ")
	return folded, displayCaser.String(cleaned), false
}
