// ABOUTME: Help display for the kanban CLI listing every command, global flags, and environment.
// ABOUTME: Provides printHelp for root usage output and envStatus for showing configured variables.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes the command summary for the root command to w.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "Kanban-Lite CLI %s\n", ver)
	fmt.Fprintln(w, "Usage: kanban [flags] [command] [args...]")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  board create <name>                    - Create new board")
	fmt.Fprintln(w, "  board list                             - List all boards")
	fmt.Fprintln(w, "  board remove <name>                    - Remove board")
	fmt.Fprintln(w, "  board show <name>                      - Show board with all columns and cards")
	fmt.Fprintln(w, "  column add <board> <name> [wip_limit]  - Add column to board")
	fmt.Fprintln(w, "  column list <board>                    - List columns in board")
	fmt.Fprintln(w, "  column remove <board> <name>           - Remove column from board")
	fmt.Fprintln(w, "  column limit <board> <name> <wip>      - Change WIP limit (-1 or 'none' for unlimited)")
	fmt.Fprintln(w, "  card add <board> <column> <title...>   - Add card to column")
	fmt.Fprintln(w, "  card list <board> [column]             - List cards in board/column")
	fmt.Fprintln(w, "  card move <card_id> <from_col> <to_col> <board> - Move card between columns")
	fmt.Fprintln(w, "  card remove <board> <column> <card_id> - Remove card")
	fmt.Fprintln(w, "  card tag <board> <card_id> <tag>       - Add tag to card")
	fmt.Fprintln(w, "  card untag <board> <card_id> <tag>     - Remove tag from card")
	fmt.Fprintln(w, "  card priority <board> <card_id> <n>    - Set card priority")
	fmt.Fprintln(w, "  card assign <board> <card_id> <user>   - Assign card to user")
	fmt.Fprintln(w, "  user add <id> <name> <email>           - Register user")
	fmt.Fprintln(w, "  user list                              - List users")
	fmt.Fprintln(w, "  filter tag <board> <tag>               - Show cards with specific tag")
	fmt.Fprintln(w, "  filter priority <board> <min_priority> - Show cards with priority >= value")
	fmt.Fprintln(w, "  filter assignee <board> <user>         - Show cards assigned to user")
	fmt.Fprintln(w, "  tags <board>                           - List all tags in board")
	fmt.Fprintln(w, "  history                                - Show activity history")
	fmt.Fprintln(w, "  save [filename]                        - Save state to file (default: configured state file)")
	fmt.Fprintln(w, "  load [filename]                        - Load state from file (default: configured state file)")
	fmt.Fprintln(w, "  export <board> [md|yaml|html]          - Print board export (--write saves all formats)")
	fmt.Fprintln(w, "  search <tag>                           - Search tag across all boards")
	fmt.Fprintln(w, "  help                                   - Show this help")
	fmt.Fprintln(w, "  exit                                   - Exit interactive mode")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --home <dir>          Kanban home directory (default: ~/.local/share/kanban)")
	fmt.Fprintln(w, "  --state <file>        State file path (default: <home>/state.json)")
	fmt.Fprintln(w, "  --id-scheme <scheme>  Card ids: sequence or ulid (default: sequence)")
	fmt.Fprintln(w, "  --no-autosave         Do not save after mutating commands")
	fmt.Fprintln(w, "  --no-index            Do not maintain the SQLite search index")
	fmt.Fprintln(w, "  --no-journal          Do not append activity to the journal")
	fmt.Fprintln(w, "  -v, --verbose         Debug logging")
	fmt.Fprintln(w, "  --version             Print version and exit")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	for _, key := range []string{
		"KANBAN_HOME", "KANBAN_STATE_FILE", "KANBAN_ID_SCHEME", "KANBAN_AUTOSAVE",
		"KANBAN_INDEX", "KANBAN_JOURNAL", "KANBAN_LOG_LEVEL",
	} {
		fmt.Fprintf(w, "  %-18s %s\n", key, envStatus(key))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Locking: <state>.lock is held while the state file is read or written.")
	fmt.Fprintln(w, "  A lock left by an exited process is taken over; delete an unreadable one by hand.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Interactive mode: Run without arguments")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
