// ABOUTME: Exports a Board as a structured YAML document.
// ABOUTME: Uses gopkg.in/yaml.v3 with field order matching the JSON state schema.
package export

import (
	"fmt"
	"time"

	"github.com/2389-research/kanban-lite/kanban/core"
	"gopkg.in/yaml.v3"
)

// YamlCard is a serializable YAML representation of a single card.
type YamlCard struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Priority    int      `yaml:"priority"`
	Assignee    string   `yaml:"assignee,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	CreatedAt   string   `yaml:"created_at"`
	UpdatedAt   string   `yaml:"updated_at"`
}

// YamlColumn is a serializable YAML representation of a column. A nil
// WIPLimit means unlimited.
type YamlColumn struct {
	Name     string     `yaml:"name"`
	WIPLimit *int       `yaml:"wip_limit,omitempty"`
	Cards    []YamlCard `yaml:"cards"`
}

// YamlBoard is the top-level serializable YAML representation of a board.
type YamlBoard struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Tags    []string     `yaml:"tags,omitempty"`
	Columns []YamlColumn `yaml:"columns"`
}

// ExportYAML exports the board as YAML with columns and cards in board order.
func ExportYAML(board *core.Board) (string, error) {
	if board == nil {
		return "", fmt.Errorf("board is required to export YAML")
	}

	doc := YamlBoard{
		ID:      board.ID(),
		Name:    board.Name(),
		Tags:    board.AllTags(),
		Columns: []YamlColumn{},
	}
	for _, col := range board.Columns() {
		yc := YamlColumn{Name: col.Name(), Cards: []YamlCard{}}
		if col.Limited() {
			limit := col.WIPLimit()
			yc.WIPLimit = &limit
		}
		for _, card := range col.Cards() {
			yc.Cards = append(yc.Cards, YamlCard{
				ID:          card.ID(),
				Title:       card.Title(),
				Description: card.Description(),
				Priority:    card.Priority(),
				Assignee:    card.AssigneeID(),
				Tags:        card.Tags(),
				CreatedAt:   card.CreatedAt().Format(time.RFC3339),
				UpdatedAt:   card.UpdatedAt().Format(time.RFC3339),
			})
		}
		doc.Columns = append(doc.Columns, yc)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return string(data), nil
}
