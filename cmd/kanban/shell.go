// ABOUTME: Interactive shell: prompts for command lines and runs each against the shared workspace.
// ABOUTME: splitLine tokenizes on whitespace and keeps double-quoted text together.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote")

func (a *app) runInteractive() error {
	fmt.Fprintln(a.out, "Kanban-Lite CLI - Interactive Mode")
	fmt.Fprintln(a.out, "Type 'help' for commands or 'exit' to quit.")
	fmt.Fprintln(a.out)

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, a.style.prompt.Render("kanban>")+" ")
		if !scanner.Scan() {
			break
		}
		args, err := splitLine(scanner.Text())
		if err != nil {
			a.printError(err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			break
		}
		// Failures are already printed; the shell keeps going.
		_ = a.execute(args)
	}

	fmt.Fprintln(a.out, "Goodbye!")
	return scanner.Err()
}

// splitLine splits line into arguments. Double quotes group words, and a
// backslash inside quotes escapes the next character.
func splitLine(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		inArg   bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			inArg = true
		case !inQuote && unicode.IsSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inQuote || escaped {
		return nil, errUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
