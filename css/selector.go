package css

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ParseSelector parses a complex selector: compound simple selectors joined
// by descendant, child (>) or adjacent sibling (+) combinators. Backslash
// escapes inside identifiers are honored (utility class names like
// "py-1\.5" or "text-\[\#554348\]" depend on it). Attribute selectors and
// general siblings (~) are not supported.
func ParseSelector(s string) (Selector, error) {
	sel := Selector{Raw: strings.TrimSpace(s)}
	if sel.Raw == "" {
		return sel, fmt.Errorf("empty selector")
	}

	var (
		cur        compound
		haveCur    bool
		pendingSep byte = 0
	)

	flush := func() {
		if haveCur {
			sel.parts = append(sel.parts, cur)
			cur = compound{}
			haveCur = false
		}
	}

	i := 0
	for i < len(sel.Raw) {
		c := sel.Raw[i]
		switch {
		case c == ' ' || c == '\t':
			if haveCur && pendingSep == 0 {
				pendingSep = ' '
			}
			i++
		case c == '>' || c == '+':
			if !haveCur && len(sel.parts) == 0 {
				return sel, fmt.Errorf("selector %q starts with combinator", s)
			}
			pendingSep = c
			i++
		case c == '~' || c == '[':
			return sel, fmt.Errorf("unsupported selector syntax in %q", s)
		default:
			if haveCur && pendingSep != 0 {
				flush()
			}
			if pendingSep != 0 {
				sel.combinators = append(sel.combinators, pendingSep)
				pendingSep = 0
			}
			var err error
			if i, err = parseSimple(sel.Raw, i, &cur); err != nil {
				return sel, err
			}
			haveCur = true
		}
	}
	flush()

	if len(sel.parts) == 0 {
		return sel, fmt.Errorf("selector %q has no matchable parts", s)
	}
	if len(sel.combinators) != len(sel.parts)-1 {
		return sel, fmt.Errorf("malformed selector %q", s)
	}

	for _, part := range sel.parts {
		if part.ID != "" {
			sel.spec[0]++
		}
		sel.spec[1] += len(part.Classes) + len(part.Pseudo)
		if !part.universal() {
			sel.spec[2]++
		}
	}
	return sel, nil
}

// parseSimple consumes one simple selector (tag, "*", ".class", "#id" or
// ":pseudo") starting at position i and merges it into the compound.
func parseSimple(s string, i int, c *compound) (int, error) {
	switch s[i] {
	case '*':
		c.Tag = "*"
		return i + 1, nil
	case '.':
		name, next := parseIdent(s, i+1)
		if name == "" {
			return i, fmt.Errorf("empty class name in selector %q", s)
		}
		c.Classes = append(c.Classes, name)
		return next, nil
	case '#':
		name, next := parseIdent(s, i+1)
		if name == "" {
			return i, fmt.Errorf("empty id in selector %q", s)
		}
		c.ID = name
		return next, nil
	case ':':
		// swallow functional notation arguments too, the pseudo never matches
		j := i + 1
		for j < len(s) && s[j] == ':' {
			j++
		}
		name, next := parseIdent(s, j)
		if name == "" {
			return i, fmt.Errorf("empty pseudo class in selector %q", s)
		}
		if next < len(s) && s[next] == '(' {
			depth := 1
			next++
			for next < len(s) && depth > 0 {
				switch s[next] {
				case '(':
					depth++
				case ')':
					depth--
				}
				next++
			}
		}
		c.Pseudo = append(c.Pseudo, name)
		return next, nil
	default:
		name, next := parseIdent(s, i)
		if name == "" {
			return i, fmt.Errorf("unexpected character %q in selector %q", s[i], s)
		}
		c.Tag = strings.ToLower(name)
		return next, nil
	}
}

// parseIdent reads an identifier honoring backslash escapes.
func parseIdent(s string, i int) (string, int) {
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80 {
			b.WriteByte(c)
			i++
			continue
		}
		break
	}
	return b.String(), i
}

// Matches reports whether the selector matches the element node. Selectors
// containing pseudo classes never match - captured markup carries no
// interaction state.
func (sel Selector) Matches(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return sel.matchFrom(len(sel.parts)-1, n)
}

func (sel Selector) matchFrom(part int, n *html.Node) bool {
	if !matchCompound(sel.parts[part], n) {
		return false
	}
	if part == 0 {
		return true
	}

	switch sel.combinators[part-1] {
	case '>':
		if p := parentElement(n); p != nil {
			return sel.matchFrom(part-1, p)
		}
		return false
	case '+':
		if p := previousElement(n); p != nil {
			return sel.matchFrom(part-1, p)
		}
		return false
	default: // descendant
		for p := parentElement(n); p != nil; p = parentElement(p) {
			if sel.matchFrom(part-1, p) {
				return true
			}
		}
		return false
	}
}

func matchCompound(c compound, n *html.Node) bool {
	if len(c.Pseudo) > 0 {
		return false
	}
	if !c.universal() && c.Tag != n.Data {
		return false
	}
	if c.ID != "" && attrValue(n, "id") != c.ID {
		return false
	}
	if len(c.Classes) > 0 {
		classes := strings.Fields(attrValue(n, "class"))
		for _, want := range c.Classes {
			found := false
			for _, have := range classes {
				if have == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func previousElement(n *html.Node) *html.Node {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}
