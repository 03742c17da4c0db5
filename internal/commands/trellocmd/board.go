package trellocmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/backend/trello"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&ListsCmd{}, &AddListCmd{}, &ArchiveListCmd{}, &ActivityCmd{}, &BoardCmd{})
}

// ListsCmd prints the board's lists, optionally with their cards.
type ListsCmd struct {
	withCards bool
}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return []string{"ls"} }
func (c *ListsCmd) Synopsis() string  { return "Show the board's lists" }
func (c *ListsCmd) Usage() string     { return "trello lists [--with-cards]" }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.withCards, "with-cards", false, "Include the cards of every list")
}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 0 {
		return commands.UsageError(errOut, c.Usage())
	}
	p := output.New(out)

	if c.withCards {
		overview, err := svc.BoardOverview(ctx)
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		p.Header("Board Overview")
		for _, l := range overview {
			p.Printf("\n%s (%d cards)\n", l.Name, len(l.Cards))
			p.Field("ID", l.ID)
			for _, card := range l.Cards {
				p.Printf("    - %s%s\n", card.Name, dueSuffix(card))
			}
		}
		return exitcode.Success
	}

	lists, err := svc.Lists(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if len(lists) == 0 {
		p.Println("No lists on this board.")
		return exitcode.Success
	}
	p.Header("Board Lists")
	for _, l := range lists {
		p.Printf("\n%s\n", l.Name)
		p.Field("ID", l.ID)
		p.Field("Position", formatPos(l.Pos))
		p.Field("Closed", l.Closed)
	}
	return exitcode.Success
}

// AddListCmd creates a list on the board.
type AddListCmd struct{}

func (c *AddListCmd) Name() string      { return "add-list" }
func (c *AddListCmd) Aliases() []string { return []string{"create-list"} }
func (c *AddListCmd) Synopsis() string  { return "Create a list" }
func (c *AddListCmd) Usage() string     { return "trello add-list <name> [top|bottom|<pos>]" }
func (c *AddListCmd) NeedsAuth() bool   { return true }

func (c *AddListCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddListCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 1 || len(args) > 2 || strings.TrimSpace(args[0]) == "" {
		return commands.UsageError(errOut, c.Usage())
	}
	var posArg string
	if len(args) == 2 {
		posArg = args[1]
	}
	pos, err := parsePos(posArg)
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}

	l, err := svc.CreateList(ctx, args[0], pos)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if cfg.Quiet {
		p.Println(l.ID)
		return exitcode.Success
	}
	p.Success("Created list: %s", l.Name)
	p.Field("ID", l.ID)
	p.Field("Position", formatPos(l.Pos))
	return exitcode.Success
}

// ArchiveListCmd closes a list.
type ArchiveListCmd struct{}

func (c *ArchiveListCmd) Name() string      { return "archive-list" }
func (c *ArchiveListCmd) Aliases() []string { return nil }
func (c *ArchiveListCmd) Synopsis() string  { return "Archive a list" }
func (c *ArchiveListCmd) Usage() string     { return "trello archive-list <list-id|list-name>" }
func (c *ArchiveListCmd) NeedsAuth() bool   { return true }

func (c *ArchiveListCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ArchiveListCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	listID, code := resolveList(ctx, svc, args[0], errOut)
	if code != exitcode.Success {
		return code
	}

	l, err := svc.ArchiveList(ctx, listID)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		p := output.New(out)
		p.Success("Archived list: %s", l.Name)
		p.Field("ID", l.ID)
	}
	return exitcode.Success
}

// ActivityCmd prints recent board activity.
type ActivityCmd struct{}

func (c *ActivityCmd) Name() string      { return "activity" }
func (c *ActivityCmd) Aliases() []string { return []string{"log"} }
func (c *ActivityCmd) Synopsis() string  { return "Show recent board activity" }
func (c *ActivityCmd) Usage() string     { return "trello activity [limit=20]" }
func (c *ActivityCmd) NeedsAuth() bool   { return true }

func (c *ActivityCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ActivityCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	limit, ok := parseLimit(arg, 20)
	if !ok {
		return commands.UserError(errOut, "limit must be a positive integer")
	}

	actions, err := svc.Actions(ctx, limit)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(actions) == 0 {
		p.Println("No recent activity.")
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Recent Activity (%d)", len(actions)))
	for _, a := range actions {
		p.Printf("\n[%s] %s\n", output.DateTime(a.Date), a.MemberCreator.DisplayName())
		p.Printf("  %s\n", Describe(a))
	}
	return exitcode.Success
}

// Describe summarizes an action in one line.
func Describe(a trello.Action) string {
	d := a.Data
	card := refName(d.Card)
	switch a.Type {
	case "createCard":
		return fmt.Sprintf("created card %q", card)
	case "updateCard":
		switch {
		case d.ListAfter != nil:
			return fmt.Sprintf("moved %q from %s to %s", card, refName(d.ListBefore), refName(d.ListAfter))
		case d.Old["closed"] == false:
			return fmt.Sprintf("archived card %q", card)
		}
		return fmt.Sprintf("updated card %q", card)
	case "commentCard":
		return fmt.Sprintf("commented on %q: %s", card, output.Truncate(output.OneLine(d.Text), 50))
	case "addMemberToCard":
		return fmt.Sprintf("added a member to %q", card)
	case "removeMemberFromCard":
		return fmt.Sprintf("removed a member from %q", card)
	case "createList":
		return fmt.Sprintf("created list %q", refName(d.List))
	case "updateList":
		return fmt.Sprintf("updated list %q", refName(d.List))
	case "addChecklistToCard":
		return fmt.Sprintf("added checklist %q to %q", refName(d.Checklist), card)
	case "updateCheckItemStateOnCard":
		verb, item := "uncompleted", ""
		if d.CheckItem != nil {
			item = d.CheckItem.Name
			if d.CheckItem.Complete() {
				verb = "completed"
			}
		}
		return fmt.Sprintf("%s %q on %q", verb, item, card)
	}
	return output.Label(a.Type)
}

func refName(r *trello.Ref) string {
	if r == nil {
		return ""
	}
	return r.Name
}

// BoardCmd summarizes the configured board and its members.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return nil }
func (c *BoardCmd) Synopsis() string  { return "Show the configured board" }
func (c *BoardCmd) Usage() string     { return "trello board" }
func (c *BoardCmd) NeedsAuth() bool   { return true }

func (c *BoardCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 0 {
		return commands.UsageError(errOut, c.Usage())
	}
	board, err := svc.Board(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	members, err := svc.Members(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	p.Header(board.Name)
	p.Field("ID", board.ID)
	p.Field("URL", board.ShortURL)
	if board.Desc != "" {
		p.Field("Description", output.Truncate(output.OneLine(board.Desc), 100))
	}
	p.Section(fmt.Sprintf("Members (%d)", len(members)))
	for i := range members {
		p.Printf("  - %s (@%s)\n", members[i].DisplayName(), members[i].Username)
	}
	return exitcode.Success
}

// resolveList maps a list id or name to an id, reporting a failed name
// lookup as a user error.
func resolveList(ctx context.Context, svc *trello.Client, idOrName string, errOut io.Writer) (string, int) {
	id, err := svc.ResolveList(ctx, idOrName)
	var notFound *trello.ListNotFoundError
	if errors.As(err, &notFound) {
		return "", commands.UserError(errOut, "%v", err)
	}
	if err != nil {
		return "", commands.BackendError(errOut, err)
	}
	return id, exitcode.Success
}
