package trellocmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/backend/trello"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
	"apitools/internal/rest"
)

func init() {
	Registry.MustRegister(&CommentsCmd{}, &CommentCmd{}, &EditCommentCmd{}, &DeleteCommentCmd{}, &ChecklistCmd{})
}

// CommentsCmd lists a card's comments.
type CommentsCmd struct{}

func (c *CommentsCmd) Name() string      { return "comments" }
func (c *CommentsCmd) Aliases() []string { return nil }
func (c *CommentsCmd) Synopsis() string  { return "List comments on a card" }
func (c *CommentsCmd) Usage() string     { return "trello comments <card-id>" }
func (c *CommentsCmd) NeedsAuth() bool   { return true }

func (c *CommentsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *CommentsCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	comments, err := svc.Comments(ctx, args[0])
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(comments) == 0 {
		p.Println("No comments on this card.")
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Comments (%d)", len(comments)))
	for _, a := range comments {
		p.Printf("\n[%s] %s:\n", output.DateTime(a.Date), a.MemberCreator.DisplayName())
		p.Printf("  %s\n", a.Data.Text)
		p.Field("ID", a.ID)
	}
	return exitcode.Success
}

// CommentCmd adds a comment to a card.
type CommentCmd struct{}

func (c *CommentCmd) Name() string      { return "comment" }
func (c *CommentCmd) Aliases() []string { return []string{"add-comment"} }
func (c *CommentCmd) Synopsis() string  { return "Comment on a card" }
func (c *CommentCmd) Usage() string     { return "trello comment <card-id> <text...>" }
func (c *CommentCmd) NeedsAuth() bool   { return true }

func (c *CommentCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *CommentCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return commands.UsageError(errOut, c.Usage())
	}
	text := strings.Join(args[1:], " ")
	if strings.TrimSpace(text) == "" {
		return commands.UserError(errOut, "comment must not be empty")
	}

	a, err := svc.AddComment(ctx, args[0], text)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if cfg.Quiet {
		p.Println(a.ID)
		return exitcode.Success
	}
	p.Success("Added comment to card")
	p.Field("Comment", text)
	p.Field("ID", a.ID)
	p.Field("Date", output.DateTime(a.Date))
	return exitcode.Success
}

// EditCommentCmd replaces a comment's text.
type EditCommentCmd struct{}

func (c *EditCommentCmd) Name() string      { return "edit-comment" }
func (c *EditCommentCmd) Aliases() []string { return nil }
func (c *EditCommentCmd) Synopsis() string  { return "Edit a comment" }
func (c *EditCommentCmd) Usage() string     { return "trello edit-comment <comment-id> <text...>" }
func (c *EditCommentCmd) NeedsAuth() bool   { return true }

func (c *EditCommentCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *EditCommentCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return commands.UsageError(errOut, c.Usage())
	}
	text := strings.Join(args[1:], " ")

	_, err := svc.UpdateComment(ctx, args[0], text)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "comment %s not found", args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		p := output.New(out)
		p.Success("Updated comment %s", args[0])
		p.Field("Comment", text)
	}
	return exitcode.Success
}

// DeleteCommentCmd removes a comment.
type DeleteCommentCmd struct{}

func (c *DeleteCommentCmd) Name() string      { return "delete-comment" }
func (c *DeleteCommentCmd) Aliases() []string { return nil }
func (c *DeleteCommentCmd) Synopsis() string  { return "Delete a comment" }
func (c *DeleteCommentCmd) Usage() string     { return "trello delete-comment <comment-id>" }
func (c *DeleteCommentCmd) NeedsAuth() bool   { return true }

func (c *DeleteCommentCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DeleteCommentCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	err := svc.DeleteComment(ctx, args[0])
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "comment %s not found", args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		output.New(out).Success("Deleted comment %s", args[0])
	}
	return exitcode.Success
}

// ChecklistCmd manages the checklists of a card.
type ChecklistCmd struct{}

func (c *ChecklistCmd) Name() string      { return "checklist" }
func (c *ChecklistCmd) Aliases() []string { return []string{"checklists"} }
func (c *ChecklistCmd) Synopsis() string  { return "Manage card checklists" }
func (c *ChecklistCmd) Usage() string {
	return `trello checklist <card-id> [list]
       trello checklist <card-id> create <name...>
       trello checklist <card-id> add <checklist-id> <item...>
       trello checklist <card-id> check|uncheck <item-id>
       trello checklist <card-id> remove <checklist-id> <item-id>
       trello checklist <card-id> delete <checklist-id>`
}
func (c *ChecklistCmd) NeedsAuth() bool { return true }

func (c *ChecklistCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ChecklistCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	cardID, action, params := args[0], "list", args[1:]
	if len(params) > 0 {
		action, params = strings.ToLower(params[0]), params[1:]
	}
	p := output.New(out)

	switch action {
	case "list":
		return c.list(ctx, p, svc, cardID, errOut)

	case "create":
		if len(params) < 1 {
			return commands.UsageError(errOut, "trello checklist <card-id> create <name...>")
		}
		cl, err := svc.CreateChecklist(ctx, cardID, strings.Join(params, " "))
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		if cfg.Quiet {
			p.Println(cl.ID)
			return exitcode.Success
		}
		p.Success("Created checklist: %s", cl.Name)
		p.Field("ID", cl.ID)

	case "add":
		if len(params) < 2 {
			return commands.UsageError(errOut, "trello checklist <card-id> add <checklist-id> <item...>")
		}
		item, err := svc.AddCheckItem(ctx, params[0], strings.Join(params[1:], " "))
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		if cfg.Quiet {
			p.Println(item.ID)
			return exitcode.Success
		}
		p.Success("Added checklist item: %s", item.Name)
		p.Field("ID", item.ID)

	case "check", "uncheck":
		if len(params) != 1 {
			return commands.UsageError(errOut, "trello checklist <card-id> "+action+" <item-id>")
		}
		complete := action == "check"
		item, err := svc.SetCheckItemState(ctx, cardID, params[0], complete)
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		if !cfg.Quiet {
			if complete {
				p.Success("Marked item complete: %s", item.Name)
			} else {
				p.Success("Marked item incomplete: %s", item.Name)
			}
		}

	case "remove":
		if len(params) != 2 {
			return commands.UsageError(errOut, "trello checklist <card-id> remove <checklist-id> <item-id>")
		}
		if err := svc.DeleteCheckItem(ctx, params[0], params[1]); err != nil {
			return commands.BackendError(errOut, err)
		}
		if !cfg.Quiet {
			p.Success("Removed checklist item %s", params[1])
		}

	case "delete":
		if len(params) != 1 {
			return commands.UsageError(errOut, "trello checklist <card-id> delete <checklist-id>")
		}
		if err := svc.DeleteChecklist(ctx, params[0]); err != nil {
			return commands.BackendError(errOut, err)
		}
		if !cfg.Quiet {
			p.Success("Deleted checklist %s", params[0])
		}

	default:
		return commands.UserError(errOut, "unknown action %q: valid actions are list, create, add, check, uncheck, remove, delete", action)
	}
	return exitcode.Success
}

func (c *ChecklistCmd) list(ctx context.Context, p *output.Printer, svc *trello.Client, cardID string, errOut io.Writer) int {
	checklists, err := svc.Checklists(ctx, cardID)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if len(checklists) == 0 {
		p.Println("No checklists on this card.")
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Checklists (%d)", len(checklists)))
	for _, cl := range checklists {
		done, total := cl.Progress()
		p.Printf("\n%s (%d/%d - %d%%)\n", cl.Name, done, total, percent(done, total))
		p.Field("ID", cl.ID)
		for _, item := range cl.CheckItems {
			p.Printf("  %s %s (%s)\n", checkbox(item), item.Name, item.ID)
		}
	}
	return exitcode.Success
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
