package tags

import (
	"sort"
	"strings"

	"tunecast/internal/media/ffprobe"
)

// Value holds a resolved tag value: a single scalar, or an ordered list when
// the source carried repeated comments for the same key.
type Value struct {
	parts []string
}

// Scalar constructs a single-valued Value.
func Scalar(value string) Value {
	return Value{parts: []string{value}}
}

// Multi constructs a multi-valued Value from the given parts.
func Multi(parts []string) Value {
	copied := make([]string, len(parts))
	copy(copied, parts)
	return Value{parts: copied}
}

// IsMulti reports whether the value carries more than one part.
func (v Value) IsMulti() bool {
	return len(v.parts) > 1
}

// Parts returns the individual value parts.
func (v Value) Parts() []string {
	copied := make([]string, len(v.parts))
	copy(copied, v.parts)
	return copied
}

// String renders the value for display. Multi-valued tags stay on one line,
// joined with a semicolon separator.
func (v Value) String() string {
	return strings.Join(v.parts, "; ")
}

// Multiline reports whether the rendered value spans multiple lines.
func (v Value) Multiline() bool {
	for _, part := range v.parts {
		if strings.ContainsRune(part, '\n') {
			return true
		}
	}
	return false
}

// Entry is a single normalized tag.
type Entry struct {
	// Raw is the key exactly as the source reported it.
	Raw string
	// Name is the canonical lowercase name used for lookups.
	Name string
	// Display is the human-readable name used when rendering.
	Display string
	// Value is the resolved tag value.
	Value Value
	// Binary marks picture and other non-text frames.
	Binary bool
}

// List is an ordered collection of tag entries.
type List []Entry

// FromProbe ingests the tag dictionary of an ffprobe result. Empty values are
// dropped, repeated Vorbis comments become multi-values, and the result is
// ordered by raw key.
func FromProbe(result ffprobe.Result) List {
	raw := result.Tags()
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make(List, 0, len(keys))
	for _, key := range keys {
		value := resolveValue(raw[key])
		if len(value.parts) == 0 {
			continue
		}
		name, display, binary := lookupKey(key)
		list = append(list, Entry{
			Raw:     key,
			Name:    name,
			Display: display,
			Value:   value,
			Binary:  binary,
		})
	}
	return list
}

// Get returns the value for the canonical tag name.
func (l List) Get(name string) (Value, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, entry := range l {
		if entry.Name == name {
			return entry.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of entries.
func (l List) Len() int {
	return len(l)
}

// resolveValue turns a raw tag string into a Value. ffprobe joins repeated
// Vorbis comments with ";", so a semicolon-delimited single-line value is
// ingested as a multi-value. Line endings are normalized to bare newlines.
func resolveValue(raw string) Value {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	if strings.TrimSpace(normalized) == "" {
		return Value{}
	}

	if !strings.ContainsRune(normalized, '\n') && strings.ContainsRune(normalized, ';') {
		split := strings.Split(normalized, ";")
		parts := make([]string, 0, len(split))
		for _, part := range split {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 1 {
			return Multi(parts)
		}
	}
	return Scalar(strings.TrimSpace(normalized))
}
