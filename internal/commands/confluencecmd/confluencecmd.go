// Package confluencecmd implements the confluence binary's commands.
package confluencecmd

import (
	"strconv"

	"apitools/internal/backend/confluence"
	"apitools/internal/commands"
	"apitools/internal/output"
)

// Registry holds every confluence command.
var Registry = commands.NewRegistry[*confluence.Client]("confluence")

// CredentialKeys are the environment variables login can store.
var CredentialKeys = []string{"CONFLUENCE_HOST", "CONFLUENCE_EMAIL", "CONFLUENCE_API_TOKEN"}

func init() {
	commands.RegisterBuiltins(Registry, CredentialKeys...)
}

// previewLength is how much page content get-page shows.
const previewLength = 300

func printPageLine(p *output.Printer, svc *confluence.Client, page confluence.Page) {
	p.Printf("%s (ID: %s)\n", output.Untitled(page.Title), page.ID)
	p.Field("Space", page.SpaceID)
	p.Field("Status", page.Status)
	p.Field("URL", svc.PageURL(page.SpaceID, page.ID))
	p.Println()
}

// parseLimit reads an optional positive integer argument.
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
