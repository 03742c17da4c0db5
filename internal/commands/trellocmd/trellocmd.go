// Package trellocmd implements the trello binary's commands.
package trellocmd

import (
	"fmt"
	"strconv"
	"strings"

	"apitools/internal/backend/trello"
	"apitools/internal/commands"
	"apitools/internal/output"
)

// Registry holds every trello command.
var Registry = commands.NewRegistry[*trello.Client]("trello")

// CredentialKeys are the environment variables login can store.
var CredentialKeys = []string{"TRELLO_API_KEY", "TRELLO_TOKEN", "TRELLO_BOARD_ID"}

func init() {
	commands.RegisterBuiltins(Registry, CredentialKeys...)
}

// dueSuffix renders " [Due: 2006-01-02]" for cards with a due date.
func dueSuffix(card trello.Card) string {
	if card.Due == "" {
		return ""
	}
	return " [Due: " + output.Date(card.Due) + "]"
}

func labelName(l trello.Label) string {
	if l.Name != "" {
		return l.Name
	}
	return "(no name)"
}

func printLabel(p *output.Printer, l trello.Label) {
	p.Printf("  %s (%s) - ID: %s\n", labelName(l), l.Color, l.ID)
}

// printDesc prints a card description cut to n runes.
func printDesc(p *output.Printer, desc string, n int) {
	if desc != "" {
		p.Field("Description", output.Truncate(output.OneLine(desc), n))
	}
}

// splitNames parses "A, b ,,C" into ["A", "b", "C"].
func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// parsePos accepts "top", "bottom" or a positive number.
func parsePos(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", "bottom":
		return "bottom", nil
	case "top":
		return "top", nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return s, nil
	}
	return "", fmt.Errorf("invalid position %q: use top, bottom or a positive number", s)
}

func formatPos(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseLimit(s string, def int) (int, bool) {
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
