package render

import (
	"bytes"
	"fmt"
	"text/template"
)

// pageShell is the standalone document boilerplate shared by the live view
// and the export backends. Styles are injected verbatim, html/template would
// mangle selector text.
const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
{{- if .Fonts}}
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600;700&family=Playfair+Display:wght@400;500;600;700&display=swap" rel="stylesheet">
{{- end}}
    <style>
{{.Styles}}
    </style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageShell))

// Page wraps an HTML fragment into a complete standalone document.
// Fonts adds the web font links the snapshot boilerplate carries.
type Page struct {
	Title  string
	Styles string
	Body   string
	Fonts  bool
}

func (p Page) HTML() (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("unable to expand page template: %w", err)
	}
	return buf.String(), nil
}
