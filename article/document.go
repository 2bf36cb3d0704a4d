// Package article defines the normalized internal representation of a
// pipeline article document and operations on it. Payloads historically come
// in two shapes - section map under "sections" or under "results" - both are
// accepted and normalized here, the rest of the program only ever sees one
// canonical form.
package article

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Known block types. Anything else renders through the paragraph path.
type BlockType string

const (
	BlockHeading    BlockType = "heading"
	BlockSubheading BlockType = "subheading"
	BlockParagraph  BlockType = "paragraph"
	BlockInfobox    BlockType = "infobox"
)

// Document is a single article. Sections keep the stored JSON key order -
// global reference numbering depends on it.
type Document struct {
	ID       string
	Sections []NamedSection
	Infobox  *PersonInfobox
}

type NamedSection struct {
	Name    string
	Section Section
}

// Section is a named group of blocks plus its local reference list.
type Section struct {
	Blocks     []Block     `json:"blocks"`
	References []Reference `json:"references"`
}

// Block is one typed content unit within a section.
type Block struct {
	Type      BlockType  `json:"type"`
	Content   Content    `json:"content"`
	Citations []Citation `json:"citations"`
}

// Content is either a plain string or a structured object carrying title/text
// and, for investment tables, columns/rows. Malformed shapes decode to the
// empty value, never to an error.
type Content struct {
	Raw     string
	Title   string
	Text    string
	Columns []string
	Rows    []InvestmentRow

	object bool
}

// TitleText returns heading text regardless of the content shape.
func (c Content) TitleText() string {
	if c.object {
		return c.Title
	}
	return c.Raw
}

// BodyText returns paragraph text regardless of the content shape.
func (c Content) BodyText() string {
	if c.object {
		return c.Text
	}
	return c.Raw
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &c.Raw)
	case '{':
		var obj struct {
			Title   string          `json:"title"`
			Text    string          `json:"text"`
			Columns []string        `json:"columns"`
			Rows    []InvestmentRow `json:"rows"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			// degrade to empty content
			return nil
		}
		c.Title, c.Text, c.Columns, c.Rows = obj.Title, obj.Text, obj.Columns, obj.Rows
		c.object = true
	}
	// neither string nor object - empty content
	return nil
}

// InvestmentRow is a single row of the notable investments table.
type InvestmentRow struct {
	CompanyName    string     `json:"company_name"`
	Year           FlexString `json:"year"`
	Round          string     `json:"round"`
	AmountInvested string     `json:"amount_invested"`
	Outcome        string     `json:"outcome"`
	Citations      []Citation `json:"citations"`
}

// Citation is an in-text marker pointing at a section-local reference.
type Citation struct {
	ID FlexString `json:"id"`
}

// FlexString decodes JSON strings and numbers alike, numbers keep their
// literal form. Old payloads are inconsistent about id and year types.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*f = ""
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

const infoboxSectionName = "person_infobox"

// sectionOrder is the fixed display order for known section names. Unknown
// sections follow in their stored order.
var sectionOrder = []string{"lead", "early_life", "career", "notable_investments", "personal_life"}

// ParseDocument reads and normalizes an article document payload.
func ParseDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}
	return &d, nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document payload is not an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token in document payload: %v", tok)
		}
		switch key {
		case "id":
			if err := dec.Decode(&d.ID); err != nil {
				return fmt.Errorf("unable to decode document id: %w", err)
			}
		case "sections", "results":
			if len(d.Sections) > 0 || d.Infobox != nil {
				// both schema variants present - first one wins
				var skip json.RawMessage
				if err := dec.Decode(&skip); err != nil {
					return err
				}
				continue
			}
			if err := d.decodeSections(dec); err != nil {
				return fmt.Errorf("unable to decode %q: %w", key, err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
		}
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// decodeSections walks the section map token by token so that the stored key
// order survives decoding.
func (d *Document) decodeSections(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// not a map - treat as no sections
		return nil
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token in section map: %v", tok)
		}

		if name == infoboxSectionName {
			var pi PersonInfobox
			if err := dec.Decode(&pi); err != nil {
				return fmt.Errorf("unable to decode person infobox: %w", err)
			}
			d.Infobox = &pi
			continue
		}

		var s Section
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("unable to decode section %q: %w", name, err)
		}
		d.Sections = append(d.Sections, NamedSection{Name: name, Section: s})
	}

	_, err = dec.Token()
	return err
}

// Section returns the named section or nil.
func (d *Document) Section(name string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i].Section
		}
	}
	return nil
}

// OrderedSections returns sections in display order: known names first in the
// fixed order, then the rest as stored.
func (d *Document) OrderedSections() []NamedSection {
	ordered := make([]NamedSection, 0, len(d.Sections))
	for _, name := range sectionOrder {
		for i := range d.Sections {
			if d.Sections[i].Name == name {
				ordered = append(ordered, d.Sections[i])
			}
		}
	}
	for i := range d.Sections {
		if !isKnownSection(d.Sections[i].Name) {
			ordered = append(ordered, d.Sections[i])
		}
	}
	return ordered
}

func isKnownSection(name string) bool {
	for _, n := range sectionOrder {
		if n == name {
			return true
		}
	}
	return false
}

// Title reconstructs the human readable article title from the document id:
// hyphen separated tokens with the first letter of each upper-cased.
func (d *Document) Title() string {
	words := strings.Split(d.ID, "-")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// TitleWordCount is the number of hyphen separated tokens in the id. The lead
// section emphasizes that many opening words.
func (d *Document) TitleWordCount() int {
	return len(strings.Split(d.ID, "-"))
}
