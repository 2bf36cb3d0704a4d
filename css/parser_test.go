package css

import (
	"testing"
)

func TestParse_Basic(t *testing.T) {
	sheet := NewParser(nil).Parse([]byte(`
		body { margin: 0; font-family: Georgia, serif }
		.note, .aside { color: #554348; padding: 0.5rem }
	`))

	if len(sheet.Rules) != 3 {
		t.Fatalf("got %d rules, want 3 (grouped selector splits)", len(sheet.Rules))
	}
	if sheet.Rules[0].Selector.String() != "body" {
		t.Errorf("rule 0 selector = %q, want body", sheet.Rules[0].Selector.String())
	}
	if got := sheet.Rules[0].Declarations[1]; got.Property != "font-family" || got.Value != "Georgia, serif" {
		t.Errorf("declaration = %+v, want font-family: Georgia, serif", got)
	}
	if sheet.Rules[1].Selector.String() != ".note" || sheet.Rules[2].Selector.String() != ".aside" {
		t.Errorf("grouped selectors = %q, %q", sheet.Rules[1].Selector.String(), sheet.Rules[2].Selector.String())
	}
	for i, r := range sheet.Rules {
		if r.Order != i {
			t.Errorf("rule %d has order %d", i, r.Order)
		}
	}
}

func TestParse_CommaSpacing(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want string
	}{
		{"tight commas", `p { font-family: Georgia,serif }`, "Georgia, serif"},
		{"spaced commas", `p { font-family: Georgia , "Times New Roman" ,serif }`, `Georgia, "Times New Roman", serif`},
		{"function arguments", `p { color: rgb(85,67,72) }`, "rgb(85, 67, 72)"},
		{"space separated untouched", `p { margin: 0 auto 2rem auto }`, "0 auto 2rem auto"},
		{"mixed", `p { border: 1px solid rgba(0,0,0,0.1) }`, "1px solid rgba(0, 0, 0, 0.1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := NewParser(nil).Parse([]byte(tt.css))
			if len(sheet.Rules) != 1 || len(sheet.Rules[0].Declarations) != 1 {
				t.Fatalf("unexpected parse result: %+v", sheet.Rules)
			}
			if got := sheet.Rules[0].Declarations[0].Value; got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_ImportAndAtRules(t *testing.T) {
	sheet := NewParser(nil).Parse([]byte(`
		@import url('https://fonts.googleapis.com/css2?family=Source+Serif+4&display=swap');
		@media (max-width: 640px) { .wide { display: none } }
		p { line-height: 1.6 }
	`))

	if len(sheet.Imports) != 1 || sheet.Imports[0] != "https://fonts.googleapis.com/css2?family=Source+Serif+4&display=swap" {
		t.Fatalf("imports = %v", sheet.Imports)
	}
	// the @media block and its nested ruleset are skipped entirely
	if len(sheet.Rules) != 1 || sheet.Rules[0].Selector.String() != "p" {
		t.Fatalf("rules = %d, want only the p rule", len(sheet.Rules))
	}
}

func TestParse_Important(t *testing.T) {
	sheet := NewParser(nil).Parse([]byte(`button { pointer-events: none !important; user-select: none }`))
	if len(sheet.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(sheet.Rules))
	}
	decls := sheet.Rules[0].Declarations
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}
	if !decls[0].Important || decls[0].Value != "none" {
		t.Errorf("declaration 0 = %+v, want important pointer-events: none", decls[0])
	}
	if decls[1].Important {
		t.Errorf("user-select marked important")
	}
}

func TestParse_UnsupportedSelectorWarns(t *testing.T) {
	sheet := NewParser(nil).Parse([]byte(`
		a[href^="http"] { color: blue }
		h2 { font-size: 1.5rem }
	`))
	if len(sheet.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(sheet.Rules))
	}
	if len(sheet.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(sheet.Warnings), sheet.Warnings)
	}
}

func TestParse_EscapedUtilityClasses(t *testing.T) {
	sheet := NewParser(nil).Parse([]byte(`
		.text-\[\#554348\] { color: #554348 }
		.py-1\.5 { padding-top: 0.375rem; padding-bottom: 0.375rem }
		.space-y-4 > * + * { margin-top: 1rem }
		.hover\:bg-gray-50:hover { background-color: #f9fafb }
	`))
	if len(sheet.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", sheet.Warnings)
	}
	if len(sheet.Rules) != 4 {
		t.Fatalf("got %d rules, want 4", len(sheet.Rules))
	}
}
