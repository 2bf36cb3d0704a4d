// Package css implements the small CSS subset needed to resolve computed
// styles of rendered article markup: stylesheet parsing, selector matching
// with specificity ordering and cascade with inheritance. It is not a general
// purpose CSS engine - at-rules other than @import are skipped and pseudo
// classes parse but never match (captured markup has no interaction state).
package css

import "strings"

// Declaration is a single "property: value" pair in source order.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule binds one selector to its declarations. Grouped selectors are split
// into separate rules during parsing, Order preserves source position for
// cascade tie-breaking.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	Order        int
}

// Stylesheet is a parsed CSS file.
type Stylesheet struct {
	Rules    []Rule
	Imports  []string
	Warnings []string
}

// Specificity is the usual (id, class, type) triple.
type Specificity [3]int

// Less orders specificities, lowest first.
func (s Specificity) Less(o Specificity) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

// Selector is a parsed complex selector: compound parts joined by
// combinators, rightmost part last.
type Selector struct {
	Raw         string
	parts       []compound
	combinators []byte // between parts: ' ' descendant, '>' child, '+' adjacent sibling
	spec        Specificity
}

func (s Selector) Specificity() Specificity { return s.spec }

func (s Selector) String() string { return s.Raw }

// compound is a single simple selector sequence (tag, classes, id, pseudo
// classes).
type compound struct {
	Tag     string // empty or "*" matches any element
	ID      string
	Classes []string
	Pseudo  []string
}

func (c compound) universal() bool {
	return c.Tag == "" || c.Tag == "*"
}

func (c compound) String() string {
	var b strings.Builder
	b.WriteString(c.Tag)
	if c.ID != "" {
		b.WriteByte('#')
		b.WriteString(c.ID)
	}
	for _, cl := range c.Classes {
		b.WriteByte('.')
		b.WriteString(cl)
	}
	for _, p := range c.Pseudo {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}
