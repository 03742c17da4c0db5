// Package jiracmd implements the jira binary's commands.
package jiracmd

import (
	"apitools/internal/backend/jira"
	"apitools/internal/commands"
	"apitools/internal/output"
)

// Registry holds every jira command.
var Registry = commands.NewRegistry[*jira.Client]("jira")

// CredentialKeys are the environment variables login can store.
var CredentialKeys = []string{"JIRA_HOST", "JIRA_EMAIL", "JIRA_API_TOKEN"}

func init() {
	commands.RegisterBuiltins(Registry, CredentialKeys...)
}

// Fields requested by the list commands.
var (
	searchFields   = []string{"summary", "status", "assignee", "priority", "issuetype", "updated"}
	myIssuesFields = []string{"summary", "status", "priority", "issuetype", "updated", "project"}
)

const commentPreview = 100

func printIssueLine(p *output.Printer, svc *jira.Client, issue jira.Issue, withProject bool) {
	f := issue.Fields
	p.Printf("%s: %s\n", issue.Key, f.Summary)
	if withProject {
		project := ""
		if f.Project != nil {
			project = f.Project.Name
		}
		p.Printf("  Project: %s | Status: %s | Priority: %s\n", project, f.Status.NameOr("?"), f.Priority.NameOr("None"))
		p.Field("Updated", output.Date(f.Updated))
	} else {
		p.Printf("  Status: %s | Type: %s | Priority: %s\n", f.Status.NameOr("?"), f.IssueType.NameOr("?"), f.Priority.NameOr("None"))
		p.Field("Assignee", f.Assignee.DisplayNameOr("Unassigned"))
	}
	p.Field("URL", svc.IssueURL(issue.Key))
	p.Println()
}
