package content

import (
	"sort"

	"github.com/maruel/natural"

	"artc/utils/debug"
)

// String returns a readable tree of the prepared document. It exists solely
// for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Document[%q] title[%q] method[%s]", c.Doc.ID, c.Doc.Title(), c.Method)

	if c.Doc.Infobox != nil {
		rows := c.Doc.Infobox.Rows()
		tw.Line(1, "Person infobox: %d rows, image[%q]", len(rows), c.Doc.Infobox.ImageSource())
		for _, row := range rows {
			tw.TextBlock(2, row.Label, row.Value)
		}
	}

	tw.Line(1, "Sections: %d (stored order)", len(c.Doc.Sections))
	names := make([]string, 0, len(c.Doc.Sections))
	for _, ns := range c.Doc.Sections {
		names = append(names, ns.Name)
	}
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		s := c.Doc.Section(name)
		tw.Line(2, "Section[%q] blocks[%d] references[%d]", name, len(s.Blocks), len(s.References))
		for i, b := range s.Blocks {
			tw.Line(3, "Block[%d] type=%q citations=%d", i, b.Type, len(b.Citations))
		}
	}

	global := c.Resolver.Global()
	tw.Line(1, "Global references: %d", len(global))
	for _, g := range global {
		tw.Line(2, "[%d] title=%q url=%q", g.GlobalID, g.Title, g.URL)
	}

	return tw.String()
}
