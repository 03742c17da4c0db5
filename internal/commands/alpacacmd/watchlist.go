package alpacacmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
	"apitools/internal/rest"
)

func init() {
	Registry.MustRegister(&WatchlistCmd{})
}

// WatchlistCmd manages watchlists.
type WatchlistCmd struct{}

func (c *WatchlistCmd) Name() string      { return "watchlist" }
func (c *WatchlistCmd) Aliases() []string { return []string{"watchlists"} }
func (c *WatchlistCmd) Synopsis() string  { return "List and edit watchlists" }
func (c *WatchlistCmd) Usage() string {
	return "alpaca watchlist [list | show <id> | create <name> [symbol...] | add <id> <symbol> | remove <id> <symbol> | delete <id>]"
}
func (c *WatchlistCmd) NeedsAuth() bool { return true }

func (c *WatchlistCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *WatchlistCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	action := "list"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}
	p := output.New(out)

	var err error
	switch action {
	case "list":
		err = c.list(ctx, svc, p)
	case "show":
		if len(args) != 1 {
			return commands.UsageError(errOut, c.Usage())
		}
		err = c.show(ctx, svc, p, args[0])
	case "create":
		if len(args) < 1 {
			return commands.UsageError(errOut, c.Usage())
		}
		var w *alpaca.Watchlist
		if w, err = svc.CreateWatchlist(ctx, args[0], upper(args[1:])); err == nil && !cfg.Quiet {
			p.Success("Created watchlist %s (%s)", w.Name, w.ID)
		}
	case "add":
		if len(args) != 2 {
			return commands.UsageError(errOut, c.Usage())
		}
		if _, err = svc.AddToWatchlist(ctx, args[0], strings.ToUpper(args[1])); err == nil && !cfg.Quiet {
			p.Success("Added %s", strings.ToUpper(args[1]))
		}
	case "remove":
		if len(args) != 2 {
			return commands.UsageError(errOut, c.Usage())
		}
		if err = svc.RemoveFromWatchlist(ctx, args[0], strings.ToUpper(args[1])); err == nil && !cfg.Quiet {
			p.Success("Removed %s", strings.ToUpper(args[1]))
		}
	case "delete":
		if len(args) != 1 {
			return commands.UsageError(errOut, c.Usage())
		}
		if err = svc.DeleteWatchlist(ctx, args[0]); err == nil && !cfg.Quiet {
			p.Success("Deleted watchlist %s", args[0])
		}
	default:
		return commands.UserError(errOut, "unknown watchlist action: %s", action)
	}

	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "watchlist not found")
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	return exitcode.Success
}

func (c *WatchlistCmd) list(ctx context.Context, svc *alpaca.Client, p *output.Printer) error {
	lists, err := svc.Watchlists(ctx)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		p.Println("No watchlists.")
		return nil
	}
	p.Header(fmt.Sprintf("Watchlists (%d)", len(lists)))
	for _, w := range lists {
		p.Printf("%s  %s  (updated %s)\n", w.ID, w.Name, output.Date(w.UpdatedAt))
	}
	return nil
}

func (c *WatchlistCmd) show(ctx context.Context, svc *alpaca.Client, p *output.Printer, id string) error {
	w, err := svc.Watchlist(ctx, id)
	if err != nil {
		return err
	}
	p.Header(fmt.Sprintf("%s (%d)", w.Name, len(w.Assets)))
	if len(w.Assets) == 0 {
		p.Dim("(empty)")
		return nil
	}
	for _, a := range w.Assets {
		p.Printf("%-6s  %s  %s\n", a.Symbol, a.Exchange, a.Name)
	}
	return nil
}

func upper(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(v)
	}
	return out
}
