package article

import "strings"

// PersonInfobox is the semi-structured person record stored under the
// "person_infobox" section key. Every field is optional, absent fields
// suppress their display row.
type PersonInfobox struct {
	Name             string      `json:"name"`
	ImageURL         string      `json:"image_url"`
	Image            string      `json:"image"`
	Born             *BirthInfo  `json:"born"`
	Education        []Education `json:"education"`
	Title            []Position  `json:"title"`
	SpouseName       string      `json:"spouse_name"`
	NumberOfChildren FlexString  `json:"number_of_children"`
}

type BirthInfo struct {
	Year    FlexString `json:"year"`
	City    string     `json:"city"`
	Country string     `json:"country"`
}

type Education struct {
	Institution string   `json:"institution"`
	Degrees     []string `json:"degrees"`
}

type Position struct {
	Position     string `json:"position"`
	Organization string `json:"organization"`
}

// InfoboxRow is one formatted label/value display row.
type InfoboxRow struct {
	Label string
	Value string
}

// ImageSource prefers image_url over the legacy image field. Empty result
// means no image block is rendered.
func (p *PersonInfobox) ImageSource() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return p.Image
}

// Format joins present-only birth fields with ", ". Empty result suppresses
// the Born row.
func (b *BirthInfo) Format() string {
	if b == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	if b.Year != "" {
		parts = append(parts, b.Year.String())
	}
	if b.City != "" {
		parts = append(parts, b.City)
	}
	if b.Country != "" {
		parts = append(parts, b.Country)
	}
	return strings.Join(parts, ", ")
}

// FormatEducation joins institution and degrees per entry with newlines,
// entries are separated by a blank line.
func FormatEducation(education []Education) string {
	entries := make([]string, 0, len(education))
	for _, edu := range education {
		parts := append([]string{edu.Institution}, edu.Degrees...)
		entries = append(entries, strings.Join(parts, "\n"))
	}
	return strings.Join(entries, "\n\n")
}

// FormatPositions renders "position, organization" per title entry.
func FormatPositions(titles []Position) string {
	entries := make([]string, 0, len(titles))
	for _, t := range titles {
		entries = append(entries, t.Position+", "+t.Organization)
	}
	return strings.Join(entries, "\n")
}

// Rows builds the ordered display row list. Each of Born, Education, Title,
// Spouse and Children is independently optional.
func (p *PersonInfobox) Rows() []InfoboxRow {
	if p == nil {
		return nil
	}
	var rows []InfoboxRow
	if born := p.Born.Format(); p.Born != nil && born != "" {
		rows = append(rows, InfoboxRow{Label: "Born", Value: born})
	}
	if len(p.Education) > 0 {
		rows = append(rows, InfoboxRow{Label: "Education", Value: FormatEducation(p.Education)})
	}
	if len(p.Title) > 0 {
		rows = append(rows, InfoboxRow{Label: "Title", Value: FormatPositions(p.Title)})
	}
	if p.SpouseName != "" {
		rows = append(rows, InfoboxRow{Label: "Spouse", Value: p.SpouseName})
	}
	if p.NumberOfChildren != "" {
		rows = append(rows, InfoboxRow{Label: "Children", Value: p.NumberOfChildren.String()})
	}
	return rows
}
