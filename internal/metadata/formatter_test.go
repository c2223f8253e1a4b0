package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tunecast/internal/media/ffprobe"
	"tunecast/internal/media/tags"
)

func tagList(t *testing.T, raw map[string]string) tags.List {
	t.Helper()
	return tags.FromProbe(ffprobe.Result{Format: ffprobe.Format{Tags: raw}})
}

func TestDynamicTitleJoinsConfiguredVars(t *testing.T) {
	f := New(Config{
		TitleVars: []string{"artist", "title"},
		Separator: " - ",
	})
	title, _ := f.Format(tagList(t, map[string]string{"artist": "A", "title": "B"}), 60)
	if title != "A - B" {
		t.Fatalf("expected %q, got %q", "A - B", title)
	}
}

func TestDynamicTitleSkipsMissingVars(t *testing.T) {
	f := New(Config{
		TitleVars: []string{"artist", "title"},
		Separator: " - ",
	})
	title, _ := f.Format(tagList(t, map[string]string{"title": "B"}), 60)
	if title != "B" {
		t.Fatalf("expected %q, got %q", "B", title)
	}
}

func TestFixedTitleWins(t *testing.T) {
	f := New(Config{
		Title:     "Fixed",
		TitleVars: []string{"artist"},
		Separator: " - ",
	})
	title, _ := f.Format(tagList(t, map[string]string{"artist": "A"}), 60)
	if title != "Fixed" {
		t.Fatalf("expected fixed title, got %q", title)
	}
}

func TestEmptyJoinFallsBackToRandomTitleWithHours(t *testing.T) {
	f := New(Config{
		TitleVars: []string{"artist", "title"},
		Separator: " - ",
		Titles:    []string{"Calm Evening", "Night Drive"},
	}, WithIntn(func(n int) int { return 1 }))

	title, _ := f.Format(nil, 2*3600+1)
	if title != "[3 Hours] | Night Drive" {
		t.Fatalf("unexpected fallback title %q", title)
	}

	title, _ = f.Format(nil, 1800)
	if title != "[1 Hour] | Night Drive" {
		t.Fatalf("expected singular hour label, got %q", title)
	}
}

func TestFallbackWithoutTitlesUsesDefault(t *testing.T) {
	f := New(Config{DefaultTitle: "(Empty title)"})
	title, _ := f.Format(nil, 60)
	if title != "(Empty title)" {
		t.Fatalf("expected default title, got %q", title)
	}
}

func TestDescriptionAppendsMetadataAfterTemplate(t *testing.T) {
	f := New(Config{
		Title:       "T",
		Template:    "Base description.",
		AddMetadata: true,
	})
	_, description := f.Format(tagList(t, map[string]string{"artist": "A"}), 60)
	want := "Base description.\n\nArtist: A"
	if description != want {
		t.Fatalf("unexpected description %q, want %q", description, want)
	}
}

func TestDescriptionPlacesMultilineEntriesLast(t *testing.T) {
	f := New(Config{Title: "T", AddMetadata: true})
	list := tagList(t, map[string]string{
		"album":   "Album",
		"lyrics":  "line one\nline two",
		"artist":  "Artist",
		"comment": "first\nsecond",
	})
	_, description := f.Format(list, 60)

	lyricsIdx := strings.Index(description, "Lyrics:")
	commentIdx := strings.Index(description, "Comment:")
	albumIdx := strings.Index(description, "Album:")
	artistIdx := strings.Index(description, "Artist:")
	if albumIdx < 0 || artistIdx < 0 || lyricsIdx < 0 || commentIdx < 0 {
		t.Fatalf("missing entries in description: %q", description)
	}
	if !(albumIdx < artistIdx && artistIdx < commentIdx && commentIdx < lyricsIdx) {
		t.Fatalf("unexpected entry ordering in %q", description)
	}
	if !strings.Contains(description, "\n----\nComment: first\nsecond\n") {
		t.Fatalf("multiline entry missing separator marker: %q", description)
	}
}

func TestDescriptionSkipsBinaryFrames(t *testing.T) {
	f := New(Config{Title: "T", AddMetadata: true})
	list := tagList(t, map[string]string{
		"APIC":  "\x00jpeg",
		"title": "Song",
	})
	_, description := f.Format(list, 60)
	if strings.Contains(strings.ToLower(description), "apic") {
		t.Fatalf("binary frame leaked into description: %q", description)
	}
	if !strings.Contains(description, "Title: Song") {
		t.Fatalf("expected text tag in description: %q", description)
	}
}

func TestDescriptionWithoutMetadataIsTemplateOnly(t *testing.T) {
	f := New(Config{Title: "T", Template: "Just this."})
	_, description := f.Format(tagList(t, map[string]string{"artist": "A"}), 60)
	if description != "Just this." {
		t.Fatalf("unexpected description %q", description)
	}
}

func TestLoadTitlesSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.txt")
	if err := os.WriteFile(path, []byte("One\n\n  \nTwo\n"), 0o644); err != nil {
		t.Fatalf("write titles: %v", err)
	}
	titles, err := LoadTitles(path)
	if err != nil {
		t.Fatalf("LoadTitles: %v", err)
	}
	if len(titles) != 2 || titles[0] != "One" || titles[1] != "Two" {
		t.Fatalf("unexpected titles %v", titles)
	}
}

func TestLoadTitlesMissingFileIsEmpty(t *testing.T) {
	titles, err := LoadTitles(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("LoadTitles: %v", err)
	}
	if len(titles) != 0 {
		t.Fatalf("expected empty pool, got %v", titles)
	}
}

func TestLoadTemplateTrimsTrailingNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "description.txt")
	if err := os.WriteFile(path, []byte("Template body.\n\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	template, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if template != "Template body." {
		t.Fatalf("unexpected template %q", template)
	}
}
