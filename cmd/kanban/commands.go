// ABOUTME: Board, column, card, user, filter, tag, and history commands of the kanban CLI.
// ABOUTME: Each command mutates or queries the shared workspace and prints the classic CLI messages.
package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/2389-research/kanban-lite/kanban/export"
	"github.com/2389-research/kanban-lite/kanban/session"
	"github.com/spf13/cobra"
)

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintln(a.out, a.style.success.Render(fmt.Sprintf(format, args...)))
}

func (a *app) heading(format string, args ...any) {
	fmt.Fprintln(a.out, a.style.heading.Render(fmt.Sprintf(format, args...)))
}

func (a *app) board(name string) (*core.Board, error) {
	b, err := a.ws.Board(name)
	if err != nil {
		return nil, failf("Board '%s' not found.", name)
	}
	return b, nil
}

func (a *app) card(boardName, cardID string) (*core.Card, error) {
	b, err := a.board(boardName)
	if err != nil {
		return nil, err
	}
	card, _ := b.FindCard(cardID)
	if card == nil {
		return nil, failf("Card '%s' not found in board.", cardID)
	}
	return card, nil
}

func (a *app) printCardLines(cards []*core.Card) {
	for _, c := range cards {
		a.printf("  - [%s] %s (Priority: %d)", c.ID(), c.Title(), c.Priority())
	}
}

// parseWIP accepts a non-negative limit, -1, or "none" for unlimited.
func parseWIP(s string) (int, error) {
	switch strings.ToLower(s) {
	case "none", "unlimited":
		return core.Unlimited, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < core.Unlimited {
		return 0, failf("Invalid WIP limit '%s'.", s)
	}
	return n, nil
}

func newBoardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "board", Short: "Create, list, remove, and show boards"}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create new board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.ws.CreateBoard(args[0]); err != nil {
				if errors.Is(err, session.ErrBoardExists) {
					return failf("Board '%s' already exists.", args[0])
				}
				return err
			}
			a.markDirty()
			a.success("Board '%s' created successfully.", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boards := a.ws.Boards()
			if len(boards) == 0 {
				a.printf("No boards found.")
				return nil
			}
			a.heading("Boards:")
			for _, b := range boards {
				a.printf("  - %s (ID: %s, Columns: %d)", b.Name(), b.ID(), len(b.Columns()))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ws.RemoveBoard(args[0]); err != nil {
				return failf("Board '%s' not found.", args[0])
			}
			a.markDirty()
			a.success("Board '%s' removed successfully.", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show board with all columns and cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, export.ExportMarkdown(b))
			return nil
		},
	})
	return cmd
}

func newColumnCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "column", Short: "Add, list, remove, and limit columns"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <board> <name> [wip_limit]",
		Short: "Add column to board",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, colName := args[0], args[1]
			b, err := a.board(boardName)
			if err != nil {
				return err
			}
			limit := core.Unlimited
			if len(args) == 3 {
				if limit, err = parseWIP(args[2]); err != nil {
					return err
				}
			}
			col, err := core.NewColumn(colName, limit)
			if err != nil {
				return err
			}
			if !b.AddColumn(col) {
				return failf("Column '%s' already exists in board.", colName)
			}
			a.markDirty()
			msg := fmt.Sprintf("Column '%s' added to board '%s'", colName, boardName)
			if col.Limited() {
				msg += fmt.Sprintf(" with WIP limit %d", limit)
			}
			a.success("%s.", msg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <board>",
		Short: "List columns in board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			cols := b.Columns()
			if len(cols) == 0 {
				a.printf("No columns found in board '%s'.", args[0])
				return nil
			}
			a.heading("Columns in board '%s':", args[0])
			for _, col := range cols {
				usage := strconv.Itoa(col.Len())
				if col.Limited() {
					usage += "/" + strconv.Itoa(col.WIPLimit())
				}
				a.printf("  - %s (Cards: %s)", col.Name(), usage)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <board> <name>",
		Short: "Remove column from board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			if !b.RemoveColumn(args[1]) {
				return failf("Column '%s' not found in board.", args[1])
			}
			a.markDirty()
			a.success("Column '%s' removed from board '%s'.", args[1], args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "limit <board> <name> <wip_limit>",
		Short: "Change a column's WIP limit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			col := b.FindColumn(args[1])
			if col == nil {
				return failf("Column '%s' not found in board.", args[1])
			}
			limit, err := parseWIP(args[2])
			if err != nil {
				return err
			}
			if !col.SetWIPLimit(limit) {
				return failf("Cannot set WIP limit of column '%s' to %d: it holds %d card(s).", col.Name(), limit, col.Len())
			}
			a.markDirty()
			if limit == core.Unlimited {
				a.success("WIP limit of column '%s' removed.", col.Name())
			} else {
				a.success("WIP limit of column '%s' set to %d.", col.Name(), limit)
			}
			return nil
		},
	})
	return cmd
}

func newCardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "card", Short: "Add, list, move, remove, and edit cards"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <board> <column> <title...>",
		Short: "Add card to column",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, colName := args[0], args[1]
			title := strings.Join(args[2:], " ")
			b, err := a.board(boardName)
			if err != nil {
				return err
			}
			card, err := a.ws.NewCard(title)
			if err != nil {
				return err
			}
			if !b.AddCard(colName, card) {
				return failf("Could not add card. Check if column exists and is not full.")
			}
			a.markDirty()
			a.success("Card '%s' (ID: %s) added to column '%s' in board '%s'.", title, card.ID(), colName, boardName)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <board> [column]",
		Short: "List cards in board/column",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				col := b.FindColumn(args[1])
				if col == nil {
					return failf("Column '%s' not found in board.", args[1])
				}
				if col.Len() == 0 {
					a.printf("No cards found in column '%s'.", col.Name())
					return nil
				}
				a.heading("Cards in column '%s':", col.Name())
				for _, c := range col.Cards() {
					a.printf("  - %s (ID: %s, Priority: %d)", c.Title(), c.ID(), c.Priority())
				}
				return nil
			}

			a.heading("All cards in board '%s':", b.Name())
			for _, col := range b.Columns() {
				a.printf("\n  Column: %s", col.Name())
				if col.Len() == 0 {
					a.printf("    (no cards)")
					continue
				}
				for _, c := range col.Cards() {
					a.printf("    - %s (ID: %s, Priority: %d)", c.Title(), c.ID(), c.Priority())
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "move <card_id> <from_col> <to_col> <board>",
		Short: "Move card between columns",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, from, to := args[0], args[1], args[2]
			b, err := a.board(args[3])
			if err != nil {
				return err
			}
			if !b.MoveCard(cardID, from, to) {
				return failf("Could not move card. Check card ID and column names.")
			}
			a.markDirty()
			a.success("Card '%s' moved from '%s' to '%s'.", cardID, from, to)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <board> <column> <card_id>",
		Short: "Remove card",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			if !b.RemoveCard(args[1], args[2]) {
				return failf("Card '%s' not found in column.", args[2])
			}
			a.markDirty()
			a.success("Card '%s' removed from column '%s'.", args[2], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tag <board> <card_id> <tag>",
		Short: "Add tag to card",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := a.card(args[0], args[1])
			if err != nil {
				return err
			}
			if !card.AddTag(args[2]) {
				a.printf("Card '%s' already has tag '%s'.", card.ID(), args[2])
				return nil
			}
			a.markDirty()
			a.success("Tag '%s' added to card '%s'.", args[2], card.ID())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "untag <board> <card_id> <tag>",
		Short: "Remove tag from card",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := a.card(args[0], args[1])
			if err != nil {
				return err
			}
			if !card.RemoveTag(args[2]) {
				return failf("Card '%s' has no tag '%s'.", card.ID(), args[2])
			}
			a.markDirty()
			a.success("Tag '%s' removed from card '%s'.", args[2], card.ID())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "priority <board> <card_id> <n>",
		Short: "Set card priority",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := a.card(args[0], args[1])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return failf("Invalid priority '%s'.", args[2])
			}
			card.SetPriority(n)
			a.markDirty()
			a.success("Priority of card '%s' set to %d.", card.ID(), n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assign <board> <card_id> <user>",
		Short: "Assign card to user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := a.card(args[0], args[1])
			if err != nil {
				return err
			}
			u, ok := a.ws.Users().LookupUser(args[2])
			if !ok {
				return failf("User '%s' not found.", args[2])
			}
			card.SetAssignee(u)
			a.markDirty()
			a.success("Card '%s' assigned to '%s'.", card.ID(), u.Name())
			return nil
		},
	})
	return cmd
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Register and list users"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <name> <email>",
		Short: "Register user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.ws.AddUser(args[0], args[1], args[2])
			if errors.Is(err, session.ErrUserExists) {
				return failf("User '%s' already exists.", args[0])
			}
			if err != nil {
				return err
			}
			a.markDirty()
			a.success("User '%s' (%s) added.", u.ID(), u.Name())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := a.ws.Users().All()
			if len(users) == 0 {
				a.printf("No users found.")
				return nil
			}
			a.heading("Users:")
			for _, u := range users {
				a.printf("  - %s <%s> (ID: %s)", u.Name(), u.Email(), u.ID())
			}
			return nil
		},
	})
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "filter", Short: "Filter cards by tag, priority, or assignee"}

	cmd.AddCommand(&cobra.Command{
		Use:   "tag <board> <tag>",
		Short: "Show cards with specific tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			cards := b.FindCardsByTag(args[1])
			if len(cards) == 0 {
				a.printf("No cards found with tag '%s'.", args[1])
				return nil
			}
			a.heading("Cards with tag '%s':", args[1])
			a.printCardLines(cards)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "priority <board> <min_priority>",
		Short: "Show cards with priority >= value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			minPriority, err := strconv.Atoi(args[1])
			if err != nil {
				return failf("Invalid priority '%s'.", args[1])
			}
			cards := b.FilterByPriority(minPriority)
			if len(cards) == 0 {
				a.printf("No cards found with priority >= %d.", minPriority)
				return nil
			}
			a.heading("Cards with priority >= %d:", minPriority)
			a.printCardLines(cards)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assignee <board> <user>",
		Short: "Show cards assigned to user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			u, ok := a.ws.Users().LookupUser(args[1])
			if !ok {
				return failf("User '%s' not found.", args[1])
			}
			cards := b.FilterByAssignee(u)
			if len(cards) == 0 {
				a.printf("No cards assigned to '%s'.", u.Name())
				return nil
			}
			a.heading("Cards assigned to '%s':", u.Name())
			a.printCardLines(cards)
			return nil
		},
	})
	return cmd
}

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <board>",
		Short: "List all tags in board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			tags := b.AllTags()
			if len(tags) == 0 {
				a.printf("No tags found in board '%s'.", args[0])
				return nil
			}
			a.heading("Tags in board '%s':", args[0])
			for _, tag := range tags {
				a.printf("  - %s", tag)
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show activity history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := a.ws.ActivityLog().All()
			if len(entries) == 0 {
				a.printf("No activity recorded.")
				return nil
			}
			a.heading("Activity History:")
			for _, e := range entries {
				stamp := a.style.muted.Render("[" + e.Timestamp.Local().Format("2006-01-02 15:04:05") + "]")
				a.printf("  %s %s", stamp, e.Message)
			}
			return nil
		},
	}
}
