package metadata

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"tunecast/internal/media/tags"
)

// Config captures the knobs that drive title and description synthesis.
type Config struct {
	// Title, when set, is used verbatim and disables the dynamic title.
	Title string
	// TitleVars lists the canonical tag names joined into a dynamic title.
	TitleVars []string
	// Separator joins the dynamic title parts.
	Separator string
	// Template is the base description text.
	Template string
	// AddMetadata appends the tag list to the description.
	AddMetadata bool
	// Titles is the pool of fallback titles.
	Titles []string
	// DefaultTitle is used when no other source yields a title.
	DefaultTitle string
}

// Formatter builds video titles and descriptions.
type Formatter struct {
	cfg  Config
	intn func(n int) int
}

// Option customizes a Formatter.
type Option func(*Formatter)

// WithIntn overrides the random index source (useful for tests).
func WithIntn(intn func(n int) int) Option {
	return func(f *Formatter) {
		if intn != nil {
			f.intn = intn
		}
	}
}

// New constructs a Formatter from the given configuration.
func New(cfg Config, opts ...Option) *Formatter {
	f := &Formatter{cfg: cfg, intn: rand.Intn}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format produces the title and description for the given tag list and track
// duration.
func (f *Formatter) Format(list tags.List, durationSeconds float64) (title, description string) {
	title = f.title(list, durationSeconds)
	description = f.description(list)
	return title, description
}

func (f *Formatter) title(list tags.List, durationSeconds float64) string {
	title := f.cfg.Title
	if title == "" {
		var parts []string
		for _, name := range f.cfg.TitleVars {
			if value, ok := list.Get(name); ok {
				parts = append(parts, value.String())
			}
		}
		title = strings.Join(parts, f.cfg.Separator)
	}
	if title != "" {
		return title
	}
	return f.fallbackTitle(durationSeconds)
}

// fallbackTitle renders "[N Hour(s)] | <random title>" when nothing else is
// available.
func (f *Formatter) fallbackTitle(durationSeconds float64) string {
	hours := roundedHours(durationSeconds)
	label := "Hour"
	if hours > 1 {
		label = "Hours"
	}
	random := f.randomTitle()
	if random == "" {
		return f.cfg.DefaultTitle
	}
	return fmt.Sprintf("[%d %s] | %s", hours, label, random)
}

func (f *Formatter) randomTitle() string {
	if len(f.cfg.Titles) == 0 {
		return ""
	}
	return f.cfg.Titles[f.intn(len(f.cfg.Titles))]
}

func roundedHours(seconds float64) int {
	hours := int(math.Ceil(seconds / 3600))
	if hours < 1 {
		hours = 1
	}
	return hours
}

func (f *Formatter) description(list tags.List) string {
	description := f.cfg.Template
	if !f.cfg.AddMetadata {
		return description
	}
	if description != "" {
		description += "\n"
	}

	// Multiline values go last so they do not break up the key/value block.
	// Relative order is preserved within each group.
	var singleLine, multiLine []tags.Entry
	for _, entry := range list {
		if entry.Binary {
			continue
		}
		if entry.Value.Multiline() {
			multiLine = append(multiLine, entry)
		} else {
			singleLine = append(singleLine, entry)
		}
	}

	var builder strings.Builder
	builder.WriteString(description)
	for _, entry := range singleLine {
		fmt.Fprintf(&builder, "\n%s: %s", entry.Display, entry.Value.String())
	}
	for _, entry := range multiLine {
		fmt.Fprintf(&builder, "\n----\n%s: %s\n", entry.Display, entry.Value.String())
	}
	return builder.String()
}
