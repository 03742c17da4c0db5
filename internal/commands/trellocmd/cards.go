package trellocmd

import (
	"context"
	"io"
	"net/http"
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
	Registry.MustRegister(
		&GetCardCmd{},
		&CreateCardCmd{},
		&UpdateCardCmd{},
		&MoveCardCmd{},
		&ArchiveCardCmd{},
		&DeleteCardCmd{},
		&AttachCmd{},
	)
}

// GetCardCmd prints a card with its labels, members, checklists and
// attachments.
type GetCardCmd struct {
	open bool

	// Browser opens the card URL; nil uses the system browser.
	Browser commands.Opener
}

func (c *GetCardCmd) Name() string      { return "card" }
func (c *GetCardCmd) Aliases() []string { return []string{"get-card", "show"} }
func (c *GetCardCmd) Synopsis() string  { return "Show a card" }
func (c *GetCardCmd) Usage() string     { return "trello card [--open] <card-id>" }
func (c *GetCardCmd) NeedsAuth() bool   { return true }

func (c *GetCardCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "Open the card in a browser")
}

func (c *GetCardCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	card, code := fetchCard(ctx, svc, args[0], errOut)
	if code != exitcode.Success {
		return code
	}

	p := output.New(out)
	p.Header("Card: " + card.Name)
	p.Field("ID", card.ID)
	p.Field("URL", card.ShortURL)
	p.Field("Description", orNone(card.Desc))
	p.Field("Due", orNone(output.DateTime(card.Due)))
	p.Field("Closed", card.Closed)
	if len(card.Labels) > 0 {
		names := make([]string, len(card.Labels))
		for i, l := range card.Labels {
			names[i] = l.Name
			if names[i] == "" {
				names[i] = l.Color
			}
		}
		p.Field("Labels", strings.Join(names, ", "))
	}
	if len(card.Members) > 0 {
		names := make([]string, len(card.Members))
		for i := range card.Members {
			names[i] = card.Members[i].DisplayName()
		}
		p.Field("Members", strings.Join(names, ", "))
	}
	if len(card.Checklists) > 0 {
		p.Println("  Checklists:")
		for _, cl := range card.Checklists {
			done, total := cl.Progress()
			p.Printf("    - %s: %d/%d complete\n", cl.Name, done, total)
			for _, item := range cl.CheckItems {
				p.Printf("      %s %s\n", checkbox(item), item.Name)
			}
		}
	}
	if len(card.Attachments) > 0 {
		p.Println("  Attachments:")
		for _, a := range card.Attachments {
			p.Printf("    - %s: %s\n", output.Untitled(a.Name), a.URL)
		}
	}

	if c.open {
		if err := c.Browser.Open(card.ShortURL, errOut); err != nil {
			return commands.UserError(errOut, "opening browser: %v", err)
		}
	}
	return exitcode.Success
}

// fetchCard loads a card, mapping a missing or malformed id to a user error.
func fetchCard(ctx context.Context, svc *trello.Client, id string, errOut io.Writer) (*trello.Card, int) {
	card, err := svc.Card(ctx, id)
	if missingCard(err) {
		return nil, commands.UserError(errOut, "card %s not found", id)
	}
	if err != nil {
		return nil, commands.BackendError(errOut, err)
	}
	return card, exitcode.Success
}

// missingCard reports whether err means the card id does not exist. Trello
// answers malformed ids with 400.
func missingCard(err error) bool {
	return rest.IsNotFound(err) || rest.StatusCode(err) == http.StatusBadRequest
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func checkbox(item trello.CheckItem) string {
	if item.Complete() {
		return "[x]"
	}
	return "[ ]"
}

// CreateCardCmd adds a card to a list.
type CreateCardCmd struct {
	due string
	pos string
}

func (c *CreateCardCmd) Name() string      { return "create-card" }
func (c *CreateCardCmd) Aliases() []string { return []string{"new"} }
func (c *CreateCardCmd) Synopsis() string  { return "Create a card" }
func (c *CreateCardCmd) Usage() string {
	return "trello create-card [--due DATE] [--pos top|bottom] <list-id|list-name> <name> [description]"
}
func (c *CreateCardCmd) NeedsAuth() bool { return true }

func (c *CreateCardCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.due, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	fs.StringVar(&c.pos, "pos", "bottom", "Position in the list: top, bottom or a number")
}

func (c *CreateCardCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 || len(args) > 3 || strings.TrimSpace(args[1]) == "" {
		return commands.UsageError(errOut, c.Usage())
	}
	pos, err := parsePos(c.pos)
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}
	in := trello.NewCard{Name: args[1], Due: c.due, Pos: pos}
	if len(args) == 3 {
		in.Desc = args[2]
	}

	listID, code := resolveList(ctx, svc, args[0], errOut)
	if code != exitcode.Success {
		return code
	}
	in.ListID = listID

	card, err := svc.CreateCard(ctx, in)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if cfg.Quiet {
		p.Println(card.ID)
		return exitcode.Success
	}
	p.Success("Created card: %s", card.Name)
	p.Field("ID", card.ID)
	p.Field("URL", card.ShortURL)
	if card.Due != "" {
		p.Field("Due", output.DateTime(card.Due))
	}
	return exitcode.Success
}

// UpdateCardCmd sets one field on a card.
type UpdateCardCmd struct{}

func (c *UpdateCardCmd) Name() string      { return "update-card" }
func (c *UpdateCardCmd) Aliases() []string { return []string{"update"} }
func (c *UpdateCardCmd) Synopsis() string  { return "Update a card field" }
func (c *UpdateCardCmd) Usage() string {
	return "trello update-card <card-id> <" + strings.Join(trello.UpdatableCardFields, "|") + "> <value...>"
}
func (c *UpdateCardCmd) NeedsAuth() bool { return true }

func (c *UpdateCardCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *UpdateCardCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 3 {
		return commands.UsageError(errOut, c.Usage())
	}
	id, field, value := args[0], args[1], strings.Join(args[2:], " ")

	fields, err := trello.CardUpdate(field, value)
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}
	if field == "idList" {
		listID, code := resolveList(ctx, svc, value, errOut)
		if code != exitcode.Success {
			return code
		}
		fields.Set("idList", listID)
	}

	card, err := svc.UpdateCard(ctx, id, fields)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		p := output.New(out)
		p.Success("Updated card: %s", card.Name)
		p.Field(field, value)
		p.Field("URL", card.ShortURL)
	}
	return exitcode.Success
}

// MoveCardCmd moves a card to another list.
type MoveCardCmd struct{}

func (c *MoveCardCmd) Name() string      { return "move-card" }
func (c *MoveCardCmd) Aliases() []string { return []string{"move", "mv"} }
func (c *MoveCardCmd) Synopsis() string  { return "Move a card to another list" }
func (c *MoveCardCmd) Usage() string {
	return "trello move-card <card-id> <list-id|list-name> [top|bottom|<pos>]"
}
func (c *MoveCardCmd) NeedsAuth() bool { return true }

func (c *MoveCardCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *MoveCardCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 || len(args) > 3 {
		return commands.UsageError(errOut, c.Usage())
	}
	var posArg string
	if len(args) == 3 {
		posArg = args[2]
	}
	pos, err := parsePos(posArg)
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}

	listID, code := resolveList(ctx, svc, args[1], errOut)
	if code != exitcode.Success {
		return code
	}

	card, err := svc.MoveCard(ctx, args[0], listID, pos)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		p := output.New(out)
		p.Success("Moved card: %s", card.Name)
		p.Field("To list", args[1])
		p.Field("Position", pos)
		p.Field("URL", card.ShortURL)
	}
	return exitcode.Success
}

// ArchiveCardCmd closes a card.
type ArchiveCardCmd struct{}

func (c *ArchiveCardCmd) Name() string      { return "archive-card" }
func (c *ArchiveCardCmd) Aliases() []string { return []string{"archive"} }
func (c *ArchiveCardCmd) Synopsis() string  { return "Archive a card" }
func (c *ArchiveCardCmd) Usage() string     { return "trello archive-card <card-id>" }
func (c *ArchiveCardCmd) NeedsAuth() bool   { return true }

func (c *ArchiveCardCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ArchiveCardCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	card, err := svc.ArchiveCard(ctx, args[0])
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		p := output.New(out)
		p.Success("Archived card: %s", card.Name)
		p.Field("ID", card.ID)
	}
	return exitcode.Success
}

// DeleteCardCmd deletes a card permanently.
type DeleteCardCmd struct{}

func (c *DeleteCardCmd) Name() string      { return "delete-card" }
func (c *DeleteCardCmd) Aliases() []string { return []string{"rm"} }
func (c *DeleteCardCmd) Synopsis() string  { return "Delete a card permanently" }
func (c *DeleteCardCmd) Usage() string     { return "trello delete-card <card-id>" }
func (c *DeleteCardCmd) NeedsAuth() bool   { return true }

func (c *DeleteCardCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DeleteCardCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	err := svc.DeleteCard(ctx, args[0])
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "card %s not found", args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		output.New(out).Success("Deleted card: %s", args[0])
	}
	return exitcode.Success
}

// AttachCmd lists a card's attachments or attaches a link.
type AttachCmd struct{}

func (c *AttachCmd) Name() string      { return "attachments" }
func (c *AttachCmd) Aliases() []string { return []string{"attach"} }
func (c *AttachCmd) Synopsis() string  { return "List or add card attachments" }
func (c *AttachCmd) Usage() string     { return "trello attachments <card-id> [<url> [name]]" }
func (c *AttachCmd) NeedsAuth() bool   { return true }

func (c *AttachCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AttachCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 1 || len(args) > 3 {
		return commands.UsageError(errOut, c.Usage())
	}
	p := output.New(out)

	if len(args) == 1 {
		atts, err := svc.Attachments(ctx, args[0])
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		if len(atts) == 0 {
			p.Println("No attachments on this card.")
			return exitcode.Success
		}
		for _, a := range atts {
			p.Printf("%s\n", output.Untitled(a.Name))
			p.Field("URL", a.URL)
			p.Field("Added", output.Date(a.Date))
		}
		return exitcode.Success
	}

	link := args[1]
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return commands.UserError(errOut, "attachment must be an http(s) URL, got %q", link)
	}
	var name string
	if len(args) == 3 {
		name = args[2]
	}
	att, err := svc.AddAttachment(ctx, args[0], link, name)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if cfg.Quiet {
		p.Println(att.ID)
		return exitcode.Success
	}
	p.Success("Attached: %s", output.Untitled(att.Name))
	p.Field("ID", att.ID)
	return exitcode.Success
}
