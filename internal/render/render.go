// Package render defines the block-level output contract between the
// document assembler and concrete writers.
package render

// Run is one styled span of text within a paragraph. A newline inside Text
// renders as a line break within the same paragraph.
type Run struct {
	Text string
	Bold bool
}

// Plain returns an unstyled run.
func Plain(text string) Run { return Run{Text: text} }

// Bold returns a bold run.
func Bold(text string) Run { return Run{Text: text, Bold: true} }

// Sink receives block-level elements in assembly order. It is append-only
// and owned by exactly one generation call; implementations need not be
// safe for concurrent use.
type Sink interface {
	// Heading emits a heading block at the given level (1 or 2).
	Heading(level int, text string, centered bool)
	// Paragraph emits one paragraph composed of the given runs.
	Paragraph(runs ...Run)
	// Bullet emits one bulleted list paragraph.
	Bullet(text string)
	// Spacer emits an empty paragraph.
	Spacer()
}

// Document is a Sink that can serialize itself into a finished artifact.
type Document interface {
	Sink
	// Bytes returns the serialized artifact.
	Bytes() ([]byte, error)
	// Extension returns the artifact's native file extension, dot included.
	Extension() string
}
