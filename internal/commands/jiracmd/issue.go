package jiracmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/backend/jira"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
	"apitools/internal/rest"
)

func init() {
	Registry.MustRegister(&GetIssueCmd{}, &CreateIssueCmd{}, &UpdateIssueCmd{}, &AddCommentCmd{})
}

// GetIssueCmd prints an issue with its description and latest comments.
type GetIssueCmd struct {
	open bool

	// Browser opens the issue URL; nil uses the system browser.
	Browser commands.Opener
}

func (c *GetIssueCmd) Name() string      { return "get-issue" }
func (c *GetIssueCmd) Aliases() []string { return []string{"issue", "show"} }
func (c *GetIssueCmd) Synopsis() string  { return "Show an issue" }
func (c *GetIssueCmd) Usage() string     { return "jira get-issue [--open] <issue-key>" }
func (c *GetIssueCmd) NeedsAuth() bool   { return true }

func (c *GetIssueCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "Open the issue in a browser")
}

func (c *GetIssueCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	key := strings.ToUpper(args[0])

	issue, err := svc.Issue(ctx, key)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "Issue %s not found", key)
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	f := issue.Fields
	p := output.New(out)
	p.Header(issue.Key + ": " + f.Summary)
	p.Field("URL", svc.IssueURL(issue.Key))
	p.Field("Status", f.Status.NameOr("?"))
	p.Field("Type", f.IssueType.NameOr("?"))
	p.Field("Priority", f.Priority.NameOr("None"))
	p.Field("Assignee", f.Assignee.DisplayNameOr("Unassigned"))
	p.Field("Reporter", f.Reporter.DisplayNameOr("Unknown"))
	if len(f.Labels) > 0 {
		p.Field("Labels", strings.Join(f.Labels, ", "))
	}
	p.Field("Created", output.Date(f.Created))
	p.Field("Updated", output.Date(f.Updated))

	if desc := issue.DescriptionText(); strings.TrimSpace(desc) != "" {
		p.Section("Description")
		p.Println(desc)
	}

	if f.Comment != nil && len(f.Comment.Comments) > 0 {
		comments := f.Comment.Comments
		p.Section(fmt.Sprintf("Comments (%d)", len(comments)))
		if len(comments) > 3 {
			comments = comments[len(comments)-3:]
		}
		for _, cm := range comments {
			p.Printf("  - %s: %s\n", cm.Author.DisplayNameOr("Unknown"), output.Truncate(cm.Text(), commentPreview))
		}
	}

	if c.open {
		if err := c.Browser.Open(svc.IssueURL(issue.Key), errOut); err != nil {
			return commands.UserError(errOut, "opening browser: %v", err)
		}
	}
	return exitcode.Success
}

// CreateIssueCmd creates an issue.
type CreateIssueCmd struct{}

func (c *CreateIssueCmd) Name() string      { return "create-issue" }
func (c *CreateIssueCmd) Aliases() []string { return []string{"create"} }
func (c *CreateIssueCmd) Synopsis() string  { return "Create an issue" }
func (c *CreateIssueCmd) Usage() string {
	return "jira create-issue <project> <summary> [description] [type=Task] [priority=Medium]"
}
func (c *CreateIssueCmd) NeedsAuth() bool { return true }

func (c *CreateIssueCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *CreateIssueCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 || len(args) > 5 {
		return commands.UsageError(errOut, c.Usage())
	}
	in := jira.NewIssue{Project: strings.ToUpper(args[0]), Summary: args[1]}
	if len(args) > 2 {
		in.Description = args[2]
	}
	if len(args) > 3 {
		in.Type = args[3]
	}
	if len(args) > 4 {
		in.Priority = args[4]
	}
	if strings.TrimSpace(in.Summary) == "" {
		return commands.UserError(errOut, "summary must not be empty")
	}

	issue, err := svc.CreateIssue(ctx, in)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if cfg.Quiet {
		p.Println(issue.Key)
		return exitcode.Success
	}
	p.Success("Created issue: %s", issue.Key)
	p.Field("URL", svc.IssueURL(issue.Key))
	p.Field("Summary", in.Summary)
	return exitcode.Success
}

// UpdateIssueCmd sets one field of an issue.
type UpdateIssueCmd struct{}

func (c *UpdateIssueCmd) Name() string      { return "update-issue" }
func (c *UpdateIssueCmd) Aliases() []string { return []string{"update"} }
func (c *UpdateIssueCmd) Synopsis() string  { return "Update an issue field" }
func (c *UpdateIssueCmd) Usage() string {
	return "jira update-issue <issue-key> <summary|description|priority|assignee> <value...>"
}
func (c *UpdateIssueCmd) NeedsAuth() bool { return true }

func (c *UpdateIssueCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *UpdateIssueCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 3 {
		return commands.UsageError(errOut, c.Usage())
	}
	key, field, value := strings.ToUpper(args[0]), args[1], strings.Join(args[2:], " ")

	fields, err := jira.FieldUpdate(field, value)
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}
	err = svc.UpdateIssue(ctx, key, fields)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "Issue %s not found", key)
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	p := output.New(out)
	p.Success("Updated %s", key)
	p.Field(strings.ToLower(field), value)
	p.Field("URL", svc.IssueURL(key))
	return exitcode.Success
}

// AddCommentCmd posts a comment on an issue.
type AddCommentCmd struct{}

func (c *AddCommentCmd) Name() string      { return "add-comment" }
func (c *AddCommentCmd) Aliases() []string { return []string{"comment"} }
func (c *AddCommentCmd) Synopsis() string  { return "Comment on an issue" }
func (c *AddCommentCmd) Usage() string     { return "jira add-comment <issue-key> <text...>" }
func (c *AddCommentCmd) NeedsAuth() bool   { return true }

func (c *AddCommentCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddCommentCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return commands.UsageError(errOut, c.Usage())
	}
	key, text := strings.ToUpper(args[0]), strings.Join(args[1:], " ")

	_, err := svc.AddComment(ctx, key, text)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "Issue %s not found", key)
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	p := output.New(out)
	p.Success("Added comment to %s", key)
	p.Field("Comment", text)
	p.Field("URL", svc.IssueURL(key))
	return exitcode.Success
}
