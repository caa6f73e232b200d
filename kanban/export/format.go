// ABOUTME: Export format names, file extensions, and a single Render entry point.
// ABOUTME: Used by the storage manager and the CLI export command.
package export

import (
	"fmt"
	"strings"

	"github.com/2389-research/kanban-lite/kanban/core"
)

// Format selects an export rendering.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
)

// Formats lists every supported format in the order exports are written.
var Formats = []Format{FormatMarkdown, FormatYAML, FormatHTML}

// ParseFormat accepts a format name or common alias such as "markdown" or "yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want md, yaml, or html)", name)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Render renders board in format f.
func Render(board *core.Board, f Format) (string, error) {
	switch f {
	case FormatMarkdown:
		return ExportMarkdown(board), nil
	case FormatYAML:
		return ExportYAML(board)
	case FormatHTML:
		return ExportHTML(board)
	}
	return "", fmt.Errorf("unknown export format %q", f)
}
