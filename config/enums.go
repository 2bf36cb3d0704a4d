package config

import (
	"fmt"
	"strings"
)

// Specification of requested export method.
type ExportMethod int

const (
	// ExportMethodStatic serializes the presentation tree directly, wrapping
	// it into a small hand-maintained stylesheet.
	ExportMethodStatic ExportMethod = iota
	// ExportMethodSnapshot captures the rendered article view markup and
	// inlines computed styles per node.
	ExportMethodSnapshot
)

var exportMethodNames = map[ExportMethod]string{
	ExportMethodStatic:   "static",
	ExportMethodSnapshot: "snapshot",
}

func (m ExportMethod) String() string {
	if name, ok := exportMethodNames[m]; ok {
		return name
	}
	// this should never happen
	panic("unsupported export method requested")
}

// Suffix returns method specific output file name suffix including extension.
func (m ExportMethod) Suffix() string {
	switch m {
	case ExportMethodStatic:
		return "-article.html"
	case ExportMethodSnapshot:
		return "-dom-capture.html"
	default:
		// this should never happen
		panic("unsupported export method requested")
	}
}

func ParseExportMethod(name string) (ExportMethod, error) {
	for m, n := range exportMethodNames {
		if strings.EqualFold(name, n) {
			return m, nil
		}
	}
	return ExportMethodStatic, fmt.Errorf("unknown export method: %q", name)
}

func ExportMethodNames() []string {
	return []string{exportMethodNames[ExportMethodStatic], exportMethodNames[ExportMethodSnapshot]}
}
