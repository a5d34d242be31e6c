package generator

import (
	"strings"

	"git.home.luguber.info/inful/contractforge/internal/docmodel"
	"git.home.luguber.info/inful/contractforge/internal/placeholder"
	"git.home.luguber.info/inful/contractforge/internal/render"
)

// signatureRuleWidth is the length of the underscore rule representing the
// physical signature line.
const signatureRuleWidth = 50

// builder renders one structure description into a sink. It holds the input
// data for placeholder resolution and nothing else; all output goes through
// the sink.
type builder struct {
	data docmodel.InputData
	sink render.Sink
}

func (b *builder) resolve(text string) string {
	return placeholder.Resolve(text, b.data)
}

// title emits the top-level document heading, centered.
func (b *builder) title(t *docmodel.TitleBlock) {
	b.sink.Heading(1, b.resolve(t.Content), true)
}

// headerSection renders the letterhead block: one paragraph per label/value
// item. Whichever side is non-empty after resolution renders alone; items
// with both sides empty are skipped.
func (b *builder) headerSection(h *docmodel.HeaderSection) {
	if h.Type != "header_details" {
		return
	}
	for _, item := range h.Items {
		b.labelValueParagraph(b.resolve(item.Label), b.resolve(item.Value))
	}
}

// labelValueParagraph emits the shared label/value form: bold label followed
// by the plain value, or the non-empty side alone, or nothing.
func (b *builder) labelValueParagraph(label, value string) {
	switch {
	case label != "" && value != "":
		b.sink.Paragraph(render.Bold(label+" "), render.Plain(value))
	case label != "":
		b.sink.Paragraph(render.Plain(label))
	case value != "":
		b.sink.Paragraph(render.Plain(value))
	}
}

// parties renders the intro paragraph followed by one block per party.
// Fields resolving to empty or whitespace-only text are omitted entirely so
// a missing value never blanks out neighbouring content.
func (b *builder) parties(p *docmodel.PartiesSection) {
	b.sink.Paragraph(render.Plain(b.resolve(p.Content)))

	for _, named := range p.Subsections {
		party := named.Party
		if party.Type != "party_details" {
			continue
		}
		runs := []render.Run{render.Bold(b.resolve(party.Label)), render.Plain("\n")}
		for _, field := range party.Fields {
			content := b.resolve(field.Value)
			if strings.TrimSpace(content) == "" {
				continue
			}
			runs = append(runs, render.Plain(content+"\n"))
		}
		b.sink.Paragraph(runs...)
	}
}

// section renders a numbered section: level-2 heading, body paragraph, and
// subsections if present. The heading is composed from literal number and
// title; only the body goes through placeholder resolution.
func (b *builder) section(s docmodel.Section) {
	b.sink.Heading(2, s.Number.String()+". "+s.Title, false)
	b.sink.Paragraph(render.Plain(b.resolve(s.Content)))
	if s.Subsections != nil {
		b.subsections(s.Subsections)
	}
}

// subsections dispatches on the decoded variant. The fallback case absorbs
// unknown tags and malformed items instead of failing the generation.
func (b *builder) subsections(subs *docmodel.Subsections) {
	switch subs.Kind {
	case docmodel.KindBulletList:
		for _, item := range subs.Items {
			b.sink.Bullet(b.resolve(item.Content))
		}
	case docmodel.KindDetailList, docmodel.KindHeaderDetails:
		for _, item := range subs.Items {
			b.detailParagraph(b.resolve(item.Label), b.resolve(item.Value))
		}
	case docmodel.KindFallback:
		for _, item := range subs.Items {
			b.fallbackItem(item)
		}
	}
}

// detailParagraph renders a timeline/payment/header detail line: bold label
// plus plain value when both are present, otherwise the present side alone.
func (b *builder) detailParagraph(label, value string) {
	switch {
	case label != "" && value != "":
		b.sink.Paragraph(render.Bold(label+" "), render.Plain(value))
	case label != "":
		b.sink.Paragraph(render.Plain(label))
	case value != "":
		b.sink.Paragraph(render.Plain(value))
	}
}

// fallbackItem renders an item of unknown shape: content as plain text,
// label/value in the bolded-label form, bare scalars stringified. Items
// carrying nothing renderable are skipped; this path never fails.
func (b *builder) fallbackItem(item docmodel.Item) {
	switch {
	case item.IsScalar:
		if text := b.resolve(item.Raw); text != "" {
			b.sink.Paragraph(render.Plain(text))
		}
	case item.HasContent:
		b.sink.Paragraph(render.Plain(b.resolve(item.Content)))
	case item.HasLabel && item.HasValue:
		b.sink.Paragraph(render.Bold(b.resolve(item.Label)+" "), render.Plain(b.resolve(item.Value)))
	case item.HasLabel:
		b.sink.Paragraph(render.Plain(b.resolve(item.Label)))
	case item.HasValue:
		b.sink.Paragraph(render.Plain(b.resolve(item.Value)))
	}
}

// signatureSection renders the witness clause and one signature block per
// party: bold resolved label, a fixed-width underscore rule, then verbatim
// trimmed field lines with no label prefix and no bolding.
func (b *builder) signatureSection(s *docmodel.SignatureSection) {
	if s.Content != "" {
		b.sink.Paragraph(render.Bold(s.Content))
		b.sink.Spacer()
	}

	rule := strings.Repeat("_", signatureRuleWidth)
	for _, named := range s.Signatures {
		runs := []render.Run{
			render.Bold(b.resolve(named.Block.Label)),
			render.Plain("\n"),
			render.Plain(rule + "\n"),
		}
		for _, field := range named.Block.Fields {
			content := strings.TrimSpace(b.resolve(field.Value))
			if content == "" {
				continue
			}
			runs = append(runs, render.Plain(content+"\n"))
		}
		b.sink.Paragraph(runs...)
		b.sink.Spacer()
	}
}
