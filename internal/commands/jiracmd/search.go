package jiracmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
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
	Registry.MustRegister(&SearchCmd{}, &MyIssuesCmd{}, &TransitionCmd{}, &WhoamiCmd{})
}

// SearchCmd runs a JQL query.
type SearchCmd struct{}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"jql"} }
func (c *SearchCmd) Synopsis() string  { return "Search issues with JQL" }
func (c *SearchCmd) Usage() string     { return "jira search <jql> [max=50]" }
func (c *SearchCmd) NeedsAuth() bool   { return true }

func (c *SearchCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 1 || len(args) > 2 || strings.TrimSpace(args[0]) == "" {
		return commands.UsageError(errOut, c.Usage())
	}
	maxResults := 50
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return commands.UserError(errOut, "max must be a positive integer")
		}
		maxResults = n
	}

	res, err := svc.Search(ctx, args[0], maxResults, searchFields)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(res.Issues) == 0 {
		p.Println("No issues found.")
		return exitcode.Success
	}
	total := res.Total
	if total < len(res.Issues) {
		total = len(res.Issues)
	}
	p.Header(fmt.Sprintf("Found %d issues (showing %d)", total, len(res.Issues)))
	for _, issue := range res.Issues {
		printIssueLine(p, svc, issue, false)
	}
	return exitcode.Success
}

// MyIssuesCmd lists issues assigned to the caller.
type MyIssuesCmd struct{}

func (c *MyIssuesCmd) Name() string      { return "my-issues" }
func (c *MyIssuesCmd) Aliases() []string { return []string{"mine"} }
func (c *MyIssuesCmd) Synopsis() string  { return "List issues assigned to you" }
func (c *MyIssuesCmd) Usage() string     { return "jira my-issues [status=Open|all]" }
func (c *MyIssuesCmd) NeedsAuth() bool   { return true }

func (c *MyIssuesCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *MyIssuesCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	status := "Open"
	if len(args) > 0 {
		status = strings.Join(args, " ")
	}

	res, err := svc.Search(ctx, jira.MyIssuesJQL(status), 50, myIssuesFields)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(res.Issues) == 0 {
		p.Printf("No %s issues assigned to you.\n", status)
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Your %s issues (%d)", status, len(res.Issues)))
	for _, issue := range res.Issues {
		printIssueLine(p, svc, issue, true)
	}
	return exitcode.Success
}

// TransitionCmd lists or applies workflow transitions.
type TransitionCmd struct{}

func (c *TransitionCmd) Name() string      { return "transition" }
func (c *TransitionCmd) Aliases() []string { return []string{"move"} }
func (c *TransitionCmd) Synopsis() string  { return "Move an issue to a new status" }
func (c *TransitionCmd) Usage() string {
	return "jira transition <issue-key> list|<transition name...>"
}
func (c *TransitionCmd) NeedsAuth() bool { return true }

func (c *TransitionCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *TransitionCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return commands.UsageError(errOut, c.Usage())
	}
	key, name := strings.ToUpper(args[0]), strings.Join(args[1:], " ")

	transitions, err := svc.Transitions(ctx, key)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "Issue %s not found", key)
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if strings.EqualFold(name, "list") {
		p.Header("Available transitions for " + key)
		for _, t := range transitions {
			p.Printf("  - %s (id: %s)\n", t.Name, t.ID)
		}
		return exitcode.Success
	}

	t, ok := jira.FindTransition(transitions, name)
	if !ok {
		fmt.Fprintf(errOut, "error: transition %q not found for %s\n\nAvailable transitions:\n", name, key)
		for _, other := range transitions {
			fmt.Fprintf(errOut, "  - %s\n", other.Name)
		}
		return exitcode.UserError
	}

	if err := svc.Transition(ctx, key, t.ID); err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		p.Success("Transitioned %s to %q", key, t.Name)
		p.Field("URL", svc.IssueURL(key))
	}
	return exitcode.Success
}

// WhoamiCmd prints the authenticated account.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return []string{"me"} }
func (c *WhoamiCmd) Synopsis() string  { return "Show the authenticated user" }
func (c *WhoamiCmd) Usage() string     { return "jira whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc *jira.Client, args []string, out, errOut io.Writer) int {
	u, err := svc.Myself(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	p := output.New(out)
	p.Header(u.DisplayNameOr("(no name)"))
	p.Field("Account ID", u.AccountID)
	if u.EmailAddress != "" {
		p.Field("Email", u.EmailAddress)
	}
	if u.TimeZone != "" {
		p.Field("Time Zone", u.TimeZone)
	}
	p.Field("Active", u.Active)
	p.Field("Site", svc.Host())
	return exitcode.Success
}
