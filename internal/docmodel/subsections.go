package docmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SubsectionKind enumerates the subsection rendering variants. Unknown or
// absent type tags map to KindFallback rather than failing the decode; the
// fallback builder absorbs whatever shape the items have.
type SubsectionKind int

const (
	KindFallback SubsectionKind = iota
	KindBulletList
	KindDetailList
	KindHeaderDetails
)

// String returns the kind name for logs and diagnostics.
func (k SubsectionKind) String() string {
	switch k {
	case KindBulletList:
		return "bullet_list"
	case KindDetailList:
		return "detail_list"
	case KindHeaderDetails:
		return "header_details"
	default:
		return "fallback"
	}
}

// kindForTag maps a structure tree type tag onto a rendering variant.
// timeline_details and payment_details are semantically identical.
func kindForTag(tag string) SubsectionKind {
	switch tag {
	case "bullet_list":
		return KindBulletList
	case "timeline_details", "payment_details":
		return KindDetailList
	case "header_details":
		return KindHeaderDetails
	default:
		return KindFallback
	}
}

// Subsections is the tagged union over subsection variants. Tag keeps the
// original type string for diagnostics even when it maps to the fallback.
type Subsections struct {
	Kind  SubsectionKind
	Tag   string
	Items []Item
}

// subsectionsWire is the raw JSON shape of a subsections block.
type subsectionsWire struct {
	Type  string `json:"type"`
	Items []Item `json:"items"`
}

func (s *Subsections) UnmarshalJSON(data []byte) error {
	var wire subsectionsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode subsections: %w", err)
	}
	s.Tag = wire.Type
	s.Kind = kindForTag(wire.Type)
	s.Items = wire.Items
	return nil
}

// Item is one entry of a subsections block. Items come in three shapes:
// {content}, {label, value}, or a bare scalar. The flags record which
// fields were actually present so the builders can tell "" from absent.
type Item struct {
	Content string
	Label   string
	Value   string
	Raw     string

	HasContent bool
	HasLabel   bool
	HasValue   bool
	IsScalar   bool
}

func (it *Item) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '{' {
		var obj struct {
			Content *string `json:"content"`
			Label   *string `json:"label"`
			Value   *string `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("decode subsection item: %w", err)
		}
		if obj.Content != nil {
			it.Content = *obj.Content
			it.HasContent = true
		}
		if obj.Label != nil {
			it.Label = *obj.Label
			it.HasLabel = true
		}
		if obj.Value != nil {
			it.Value = *obj.Value
			it.HasValue = true
		}
		return nil
	}

	// Scalar item: stringify via its natural textual form.
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("decode subsection item: %w", err)
	}
	it.IsScalar = true
	switch val := v.(type) {
	case string:
		it.Raw = val
	case nil:
		it.Raw = ""
	case json.Number:
		it.Raw = val.String()
	case float64:
		it.Raw = formatNumber(val)
	default:
		it.Raw = fmt.Sprintf("%v", val)
	}
	return nil
}

// formatNumber prints integral floats without a decimal point.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// Field is one named line inside a party or signature block.
type Field struct {
	Name  string
	Value string
}

// FieldList preserves the JSON object order of a fields mapping, so party
// and signature lines render in template order. encoding/json maps would
// lose that order.
type FieldList []Field

func (f *FieldList) UnmarshalJSON(data []byte) error {
	names, raws, err := orderedObject(data)
	if err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	list := make(FieldList, 0, len(names))
	for i, name := range names {
		var v string
		if err := json.Unmarshal(raws[i], &v); err != nil {
			return fmt.Errorf("decode field %q: %w", name, err)
		}
		list = append(list, Field{Name: name, Value: v})
	}
	*f = list
	return nil
}

// NamedParty pairs a subsection key with its party block.
type NamedParty struct {
	Name  string
	Party Party
}

// PartyList preserves the JSON object order of the parties subsections.
type PartyList []NamedParty

func (p *PartyList) UnmarshalJSON(data []byte) error {
	names, raws, err := orderedObject(data)
	if err != nil {
		return fmt.Errorf("decode parties: %w", err)
	}
	list := make(PartyList, 0, len(names))
	for i, name := range names {
		var party Party
		if err := json.Unmarshal(raws[i], &party); err != nil {
			return fmt.Errorf("decode party %q: %w", name, err)
		}
		list = append(list, NamedParty{Name: name, Party: party})
	}
	*p = list
	return nil
}

// NamedSignature pairs a signatures key with its signature block.
type NamedSignature struct {
	Name  string
	Block SignatureBlock
}

// SignatureList preserves the JSON object order of the signature blocks.
type SignatureList []NamedSignature

func (s *SignatureList) UnmarshalJSON(data []byte) error {
	names, raws, err := orderedObject(data)
	if err != nil {
		return fmt.Errorf("decode signatures: %w", err)
	}
	list := make(SignatureList, 0, len(names))
	for i, name := range names {
		var block SignatureBlock
		if err := json.Unmarshal(raws[i], &block); err != nil {
			return fmt.Errorf("decode signature %q: %w", name, err)
		}
		list = append(list, NamedSignature{Name: name, Block: block})
	}
	*s = list
	return nil
}

// orderedObject walks a JSON object with a token decoder, returning its keys
// in document order alongside the raw value for each key.
func orderedObject(data []byte) ([]string, []json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var names []string
	var raws []json.RawMessage
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		names = append(names, key)
		raws = append(raws, raw)
	}
	return names, raws, nil
}
