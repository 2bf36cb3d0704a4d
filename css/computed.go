package css

import (
	"sort"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

// Style is the resolved property set for a single element.
type Style map[string]string

// inheritedProperties lists properties that propagate from parent to child
// when the child has no declaration of its own.
var inheritedProperties = map[string]bool{
	"border-collapse":     true,
	"border-spacing":      true,
	"caption-side":        true,
	"color":               true,
	"cursor":              true,
	"direction":           true,
	"font":                true,
	"font-family":         true,
	"font-size":           true,
	"font-style":          true,
	"font-variant":        true,
	"font-weight":         true,
	"letter-spacing":      true,
	"line-height":         true,
	"list-style":          true,
	"list-style-position": true,
	"list-style-type":     true,
	"quotes":              true,
	"text-align":          true,
	"text-indent":         true,
	"text-transform":      true,
	"visibility":          true,
	"white-space":         true,
	"word-break":          true,
	"word-spacing":        true,
}

// Engine resolves computed styles against a set of parsed stylesheets.
type Engine struct {
	rules []Rule
}

// NewEngine combines stylesheets in the order given, later sheets win source
// order ties.
func NewEngine(sheets ...*Stylesheet) *Engine {
	e := &Engine{}
	for _, sheet := range sheets {
		for _, r := range sheet.Rules {
			r.Order = len(e.rules)
			e.rules = append(e.rules, r)
		}
	}
	return e
}

// Resolve computes the style of an element node. Inherited properties of the
// parent style seed the result, matched rules apply in cascade order
// (specificity, then source order), the element's style attribute overrides
// normal declarations and !important declarations override everything.
func (e *Engine) Resolve(n *html.Node, parent Style) Style {
	style := Style{}
	for prop, val := range parent {
		if inheritedProperties[prop] {
			style[prop] = val
		}
	}

	var matched []Rule
	for _, r := range e.rules {
		if r.Selector.Matches(n) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := matched[i].Selector.Specificity(), matched[j].Selector.Specificity()
		if si != sj {
			return si.Less(sj)
		}
		return matched[i].Order < matched[j].Order
	})

	var important []Declaration
	for _, r := range matched {
		for _, d := range r.Declarations {
			if d.Important {
				important = append(important, d)
				continue
			}
			style[d.Property] = d.Value
		}
	}
	for _, d := range ParseInline(attrValue(n, "style")) {
		if d.Important {
			important = append(important, d)
			continue
		}
		style[d.Property] = d.Value
	}
	for _, d := range important {
		style[d.Property] = d.Value
	}
	return style
}

// ParseInline parses the contents of a style attribute.
func ParseInline(s string) []Declaration {
	if s == "" {
		return nil
	}

	var decls []Declaration
	parser := css.NewParser(parse.NewInputString(s), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return decls
		case css.DeclarationGrammar:
			property := strings.ToLower(string(data))
			value, imp := propertyValue(parser.Values())
			if value != "" {
				decls = append(decls, Declaration{Property: property, Value: value, Important: imp})
			}
		}
	}
}

// Inline serializes the style for a style attribute. Properties come out in
// sorted order so output is deterministic, values that carry no information
// ("initial", "normal" or empty) are dropped.
func (s Style) Inline() string {
	props := make([]string, 0, len(s))
	for prop, val := range s {
		if val == "" || val == "initial" || val == "normal" {
			continue
		}
		props = append(props, prop)
	}
	if len(props) == 0 {
		return ""
	}
	sort.Strings(props)

	var b strings.Builder
	for i, prop := range props {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(prop)
		b.WriteString(": ")
		b.WriteString(s[prop])
		b.WriteByte(';')
	}
	return b.String()
}
