package trellocmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"apitools/internal/backend/trello"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&SearchCmd{}, &MyCardsCmd{})
}

// SearchCmd finds cards by text.
type SearchCmd struct {
	allBoards bool
	limit     int
}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"find"} }
func (c *SearchCmd) Synopsis() string  { return "Search cards" }
func (c *SearchCmd) Usage() string     { return "trello search [--all-boards] [--limit N] <query...>" }
func (c *SearchCmd) NeedsAuth() bool   { return true }

func (c *SearchCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.allBoards, "all-boards", false, "Search every board you belong to")
	fs.IntVar(&c.limit, "limit", 20, "Maximum number of cards")
}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return commands.UsageError(errOut, c.Usage())
	}
	if c.limit < 1 {
		return commands.UserError(errOut, "limit must be a positive integer")
	}

	cards, err := svc.Search(ctx, query, c.allBoards, c.limit)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(cards) == 0 {
		p.Printf("No cards found for: %q\n", query)
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Search Results (%d cards)", len(cards)))
	for _, card := range cards {
		board, list := "Unknown board", "Unknown list"
		if card.Board != nil {
			board = card.Board.Name
		}
		if card.List != nil {
			list = card.List.Name
		}
		p.Printf("\n%s%s\n", card.Name, dueSuffix(card))
		p.Field("ID", card.ID)
		p.Field("Board", board)
		p.Field("List", list)
		p.Field("URL", card.ShortURL)
		printDesc(p, card.Desc, 100)
	}
	return exitcode.Success
}

// MyCardsCmd lists the cards assigned to the token's member.
type MyCardsCmd struct {
	boardOnly bool

	// Now is the clock used to flag overdue cards; nil uses time.Now.
	Now func() time.Time
}

func (c *MyCardsCmd) Name() string      { return "my-cards" }
func (c *MyCardsCmd) Aliases() []string { return []string{"mine"} }
func (c *MyCardsCmd) Synopsis() string  { return "List cards assigned to you" }
func (c *MyCardsCmd) Usage() string     { return "trello my-cards [--board] [list-filter...]" }
func (c *MyCardsCmd) NeedsAuth() bool   { return true }

func (c *MyCardsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.boardOnly, "board", false, "Only cards on the configured board")
}

func (c *MyCardsCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	var (
		cards []trello.Card
		err   error
	)
	if c.boardOnly {
		cards, err = svc.MyBoardCards(ctx)
	} else {
		cards, err = svc.MyCards(ctx)
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	if filter := strings.ToLower(strings.Join(args, " ")); filter != "" {
		lists, err := svc.Lists(ctx)
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		cards = filterByList(cards, lists, filter)
	}

	p := output.New(out)
	if len(cards) == 0 {
		p.Println("No cards assigned to you.")
		return exitcode.Success
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	p.Header(fmt.Sprintf("Your Cards (%d)", len(cards)))
	for _, card := range cards {
		overdue := ""
		if card.Overdue(now()) {
			overdue = " (OVERDUE)"
		}
		p.Printf("\n%s%s%s\n", card.Name, dueSuffix(card), overdue)
		p.Field("ID", card.ID)
		p.Field("URL", card.ShortURL)
		printDesc(p, card.Desc, 80)
	}
	return exitcode.Success
}

// filterByList keeps cards whose list name contains filter, ignoring case.
func filterByList(cards []trello.Card, lists []trello.List, filter string) []trello.Card {
	match := make(map[string]bool)
	for _, l := range lists {
		if strings.Contains(strings.ToLower(l.Name), filter) {
			match[l.ID] = true
		}
	}
	var kept []trello.Card
	for _, card := range cards {
		if match[card.IDList] {
			kept = append(kept, card)
		}
	}
	return kept
}
