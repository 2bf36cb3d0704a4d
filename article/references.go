package article

import "strconv"

// Reference is a section-local bibliography entry.
type Reference struct {
	ID        FlexString `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Author    string     `json:"author"`
	Publisher string     `json:"publisher"`
	Date      string     `json:"date"`
}

// Key identifies a citation target. Two references with the same title but
// different urls (or vice versa) are distinct.
func (r Reference) Key() string {
	return r.Title + "-" + r.URL
}

// GlobalReference is a deduplicated document-wide bibliography entry.
// GlobalID values form a dense 1..N sequence in first-seen order.
type GlobalReference struct {
	Reference
	GlobalID int
}

// CollectReferences walks all sections in their stored key order and merges
// section-local references into a single numbered list. Duplicate
// (title, url) pairs keep the number assigned on first sight.
func CollectReferences(d *Document) []GlobalReference {
	var all []GlobalReference
	seen := make(map[string]struct{})

	for i := range d.Sections {
		for _, ref := range d.Sections[i].Section.References {
			key := ref.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, GlobalReference{Reference: ref, GlobalID: len(all) + 1})
		}
	}
	return all
}

// Resolver maps section-local citation ids to global reference numbers.
type Resolver struct {
	doc    *Document
	byKey  map[string]int // reference key -> global id
	global []GlobalReference
}

func NewResolver(d *Document, global []GlobalReference) *Resolver {
	byKey := make(map[string]int, len(global))
	for _, g := range global {
		byKey[g.Key()] = g.GlobalID
	}
	return &Resolver{doc: d, byKey: byKey, global: global}
}

func (r *Resolver) Global() []GlobalReference { return r.global }

// Resolve returns the display number for a citation: the global id when the
// local id resolves through the section's own reference list, the local id
// itself otherwise. Resolution never fails, it degrades.
func (r *Resolver) Resolve(sectionName string, localID FlexString) string {
	section := r.doc.Section(sectionName)
	if section == nil {
		return localID.String()
	}
	for _, ref := range section.References {
		if ref.ID == localID {
			if globalID, ok := r.byKey[ref.Key()]; ok {
				return strconv.Itoa(globalID)
			}
			return localID.String()
		}
	}
	return localID.String()
}
