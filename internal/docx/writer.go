// Package docx renders assembled documents as Office Open XML
// (WordprocessingML) archives. The container holds the minimum part
// set Word and LibreOffice require: content types, package rels and
// word/document.xml plus a styles part carrying Heading1, Heading2
// and ListBullet.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/contractforge/internal/render"
)

// Page margins in twentieths of a point. 1440 twips is one inch.
const marginTwips = 1440

// Writer accumulates paragraphs and serializes them into a .docx
// archive. It implements render.Document.
type Writer struct {
	body strings.Builder
}

// NewWriter returns an empty document writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewDocument adapts NewWriter to the generator's document factory hook.
func NewDocument() render.Document {
	return NewWriter()
}

// Extension returns the artifact filename extension.
func (w *Writer) Extension() string { return ".docx" }

// Heading emits a styled heading paragraph. Level 1 maps to Heading1,
// everything else to Heading2. Centered headings carry a jc property.
func (w *Writer) Heading(level int, text string, centered bool) {
	style := "Heading2"
	if level <= 1 {
		style = "Heading1"
	}

	w.body.WriteString(`<w:p><w:pPr><w:pStyle w:val="` + style + `"/>`)
	if centered {
		w.body.WriteString(`<w:jc w:val="center"/>`)
	}
	w.body.WriteString(`</w:pPr>`)
	writeRun(&w.body, render.Plain(text))
	w.body.WriteString(`</w:p>`)
}

// Paragraph emits a body paragraph from the given runs. Newlines
// inside a run become soft line breaks.
func (w *Writer) Paragraph(runs ...render.Run) {
	w.body.WriteString(`<w:p>`)
	for _, r := range runs {
		writeRun(&w.body, r)
	}
	w.body.WriteString(`</w:p>`)
}

// Bullet emits a single list item styled with ListBullet.
func (w *Writer) Bullet(text string) {
	w.body.WriteString(`<w:p><w:pPr><w:pStyle w:val="ListBullet"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>`)
	writeRun(&w.body, render.Plain(text))
	w.body.WriteString(`</w:p>`)
}

// Spacer emits an empty paragraph.
func (w *Writer) Spacer() {
	w.body.WriteString(`<w:p/>`)
}

// Bytes assembles the OOXML package and returns the archive contents.
func (w *Writer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/numbering.xml", numberingXML},
		{"word/document.xml", w.documentXML()},
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Writer) documentXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString("\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	b.WriteString(w.body.String())
	fmt.Fprintf(&b, `<w:sectPr><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d"/></w:sectPr>`,
		marginTwips, marginTwips, marginTwips, marginTwips)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// writeRun emits one text run, splitting on newlines so each interior
// newline becomes a <w:br/>.
func writeRun(b *strings.Builder, r render.Run) {
	b.WriteString(`<w:r>`)
	if r.Bold {
		b.WriteString(`<w:rPr><w:b/></w:rPr>`)
	}
	segments := strings.Split(r.Text, "\n")
	for i, seg := range segments {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		if seg == "" {
			continue
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		escapeXML(b, seg)
		b.WriteString(`</w:t>`)
	}
	b.WriteString(`</w:r>`)
}

func escapeXML(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
}
