// ABOUTME: Exports a Board as a standalone HTML page rendered from its Markdown export.
// ABOUTME: Uses goldmark for conversion; raw HTML in card text is not passed through.
package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/yuin/goldmark"
)

var pageTemplate = template.Must(template.New("board").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// ExportHTML renders the board's Markdown export to an HTML document.
func ExportHTML(board *core.Board) (string, error) {
	var body bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(ExportMarkdown(board)), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{Title: board.Name(), Body: template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return page.String(), nil
}
