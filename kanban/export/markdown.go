// ABOUTME: Exports a Board as a deterministic Markdown document.
// ABOUTME: Columns appear in board order with their WIP usage; cards keep column order.
package export

import (
	"fmt"
	"strings"

	"github.com/2389-research/kanban-lite/kanban/core"
)

// ExportMarkdown renders a board as Markdown. Each column becomes a level-two
// heading followed by a bullet per card.
func ExportMarkdown(board *core.Board) string {
	var out strings.Builder

	fmt.Fprintf(&out, "# %s\n", board.Name())
	fmt.Fprintln(&out)
	fmt.Fprintf(&out, "> Board `%s` with %d card(s)\n", board.ID(), board.CardCount())

	if tags := board.AllTags(); len(tags) > 0 {
		fmt.Fprintln(&out)
		fmt.Fprintf(&out, "Tags: %s\n", strings.Join(tags, ", "))
	}

	for _, col := range board.Columns() {
		fmt.Fprintln(&out)
		fmt.Fprintf(&out, "## %s %s\n", col.Name(), usage(col))
		fmt.Fprintln(&out)

		cards := col.Cards()
		if len(cards) == 0 {
			fmt.Fprintln(&out, "_No cards._")
			continue
		}
		for _, card := range cards {
			fmt.Fprintf(&out, "- **%s** (`%s`)%s\n", card.Title(), card.ID(), cardDetails(card))
			if d := card.Description(); d != "" {
				for _, line := range strings.Split(d, "\n") {
					fmt.Fprintf(&out, "  > %s\n", line)
				}
			}
		}
	}

	return out.String()
}

// usage formats the column fill level, e.g. "(2/3)" or "(2)".
func usage(col *core.Column) string {
	if col.Limited() {
		return fmt.Sprintf("(%d/%d)", col.Len(), col.WIPLimit())
	}
	return fmt.Sprintf("(%d)", col.Len())
}

func cardDetails(card *core.Card) string {
	var parts []string
	if p := card.Priority(); p != 0 {
		parts = append(parts, fmt.Sprintf("priority %d", p))
	}
	if id := card.AssigneeID(); id != "" {
		name := id
		if u := card.Assignee(); u != nil {
			name = u.Name()
		}
		parts = append(parts, "assignee "+name)
	}
	if tags := card.Tags(); len(tags) > 0 {
		parts = append(parts, "tags "+strings.Join(tags, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return " - " + strings.Join(parts, "; ")
}
