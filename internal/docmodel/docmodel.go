// Package docmodel defines the typed document model for contract generation:
// the combined request envelope, the structure description tree, and the
// subsection variants the builders dispatch on.
//
// The structure description is immutable once decoded; a single generation
// call owns its copy exclusively. Input data is read-only during generation.
package docmodel

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/contractforge/internal/foundation/errors"
)

// DefaultDocumentType is used when the request omits document_type.
const DefaultDocumentType = "Document"

// InputData is the arbitrarily nested mapping placeholders resolve against.
type InputData map[string]any

// Request is the combined generation payload with exactly three top-level
// fields: document_type, structure, and input_data.
type Request struct {
	DocumentType string    `json:"document_type"`
	Structure    Structure `json:"structure"`
	InputData    InputData `json:"input_data"`
}

// Structure describes which sections exist and how to render them. Every
// block is optional; absence means the assembly stage is skipped.
type Structure struct {
	Title            *TitleBlock       `json:"title,omitempty"`
	HeaderSection    *HeaderSection    `json:"header_section,omitempty"`
	Parties          *PartiesSection   `json:"parties,omitempty"`
	Sections         []Section         `json:"sections,omitempty"`
	SignatureSection *SignatureSection `json:"signature_section,omitempty"`
}

// TitleBlock holds the document title template.
type TitleBlock struct {
	Content string `json:"content"`
}

// HeaderSection is the letterhead block used by SOW-style documents. Its
// content is a list of label/value items rather than a paragraph.
type HeaderSection struct {
	Type  string       `json:"type"`
	Items []LabelValue `json:"content"`
}

// LabelValue is one label/value line in a details block.
type LabelValue struct {
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
}

// PartiesSection introduces the contracting parties.
type PartiesSection struct {
	Content     string    `json:"content"`
	Subsections PartyList `json:"subsections,omitempty"`
}

// Party is one named party block inside the parties section.
type Party struct {
	Type   string    `json:"type"`
	Label  string    `json:"label"`
	Fields FieldList `json:"fields,omitempty"`
}

// Section is a numbered contract section.
type Section struct {
	Number      FlexString   `json:"number"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Subsections *Subsections `json:"subsections,omitempty"`
}

// SignatureSection closes the document with signature blocks per party.
type SignatureSection struct {
	Content    string        `json:"content,omitempty"`
	Signatures SignatureList `json:"signatures,omitempty"`
}

// SignatureBlock is one party's signature area.
type SignatureBlock struct {
	Label  string    `json:"label"`
	Fields FieldList `json:"fields,omitempty"`
}

// FlexString decodes either a JSON string or number into its textual form,
// so section numbers may appear as 1 or "1" in templates.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("section number must be a string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// DecodeRequest decodes and validates a combined generation request.
func DecodeRequest(r io.Reader) (*Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to decode generation request").Build()
	}
	if req.DocumentType == "" {
		req.DocumentType = DefaultDocumentType
	}
	if req.InputData == nil {
		req.InputData = InputData{}
	}
	if err := req.Structure.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// ParseRequest decodes a combined generation request from a byte slice.
func ParseRequest(data []byte) (*Request, error) {
	return DecodeRequest(strings.NewReader(string(data)))
}

// Validate checks the structural requirements the builders cannot absorb
// through fallback paths. Problems are aggregated into a single structure
// error so a generation call fails whole, never partially.
func (s *Structure) Validate() error {
	var problems []string

	if s.Title != nil && s.Title.Content == "" {
		problems = append(problems, "title block missing content")
	}
	if s.Parties != nil && s.Parties.Content == "" {
		problems = append(problems, "parties block missing content")
	}
	for i, sec := range s.Sections {
		if sec.Number == "" {
			problems = append(problems, fmt.Sprintf("section %d missing number", i))
		}
		if sec.Title == "" {
			problems = append(problems, fmt.Sprintf("section %d missing title", i))
		}
		if sec.Content == "" {
			problems = append(problems, fmt.Sprintf("section %d missing content", i))
		}
	}
	if s.SignatureSection != nil {
		for _, sig := range s.SignatureSection.Signatures {
			if sig.Block.Label == "" {
				problems = append(problems, fmt.Sprintf("signature block %q missing label", sig.Name))
			}
		}
	}

	if len(problems) > 0 {
		return errors.NewError(errors.CategoryStructure, "malformed structure description").
			WithContext("problems", problems).
			Build()
	}
	return nil
}
