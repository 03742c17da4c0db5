package alpacacmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
	"apitools/internal/rest"
)

func init() {
	Registry.MustRegister(&ClosePositionCmd{})
}

// ClosePositionCmd liquidates one position, part of one, or all of them.
type ClosePositionCmd struct {
	all          bool
	cancelOrders bool
}

func (c *ClosePositionCmd) Name() string      { return "close-position" }
func (c *ClosePositionCmd) Aliases() []string { return []string{"close"} }
func (c *ClosePositionCmd) Synopsis() string  { return "Close a position, or all positions" }
func (c *ClosePositionCmd) Usage() string {
	return "alpaca close-position <symbol> [qty|pct%] | --all [--cancel-orders]"
}
func (c *ClosePositionCmd) NeedsAuth() bool { return true }

func (c *ClosePositionCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.cancelOrders, "cancel-orders", false, "")
}

func (c *ClosePositionCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if c.all {
		if len(args) > 0 {
			return commands.UsageError(errOut, c.Usage())
		}
		return c.closeAll(ctx, cfg, svc, out, errOut)
	}
	if len(args) < 1 || len(args) > 2 {
		return commands.UsageError(errOut, c.Usage())
	}

	symbol := strings.ToUpper(args[0])
	var opts alpaca.CloseOptions
	if len(args) == 2 {
		var err error
		if opts, err = parseCloseAmount(args[1]); err != nil {
			return commands.UserError(errOut, "%v", err)
		}
	}

	pos, err := svc.Position(ctx, symbol)
	if rest.IsNotFound(err) {
		fmt.Fprintf(errOut, "No position found for %s\n", symbol)
		return exitcode.UserError
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if !cfg.Quiet {
		p.Header(fmt.Sprintf("Closing %s Position %s", symbol, svc.Mode()))
		p.Field("Current Position", pos.Qty+" shares @ "+output.Money(pos.AvgEntryPrice))
		p.Field("Current Price", output.Money(pos.CurrentPrice))
		p.Field("Unrealized P&L", output.SignedMoney(pos.UnrealizedPL))
		switch {
		case opts.Percentage > 0:
			p.Printf("\nClosing %s of position...\n", args[1])
		case opts.Qty != "":
			p.Printf("\nClosing %s shares...\n", opts.Qty)
		default:
			p.Println("\nClosing entire position...")
		}
	}

	order, err := svc.ClosePosition(ctx, symbol, opts)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	if cfg.Quiet {
		p.Println(order.ID)
		return exitcode.Success
	}
	p.Section("Close Order Submitted")
	p.Field("Order ID", order.ID)
	p.Field("Status", order.Status)
	p.Field("Side", strings.ToUpper(order.Side))
	p.Field("Quantity", order.Qty)
	return exitcode.Success
}

func (c *ClosePositionCmd) closeAll(ctx context.Context, cfg *config.Config, svc *alpaca.Client, out, errOut io.Writer) int {
	positions, err := svc.Positions(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(positions) == 0 {
		p.Println("No open positions to close.")
		return exitcode.Success
	}

	p.Header("Closing All Positions " + svc.Mode())
	p.Printf("Found %d position(s):\n", len(positions))
	for _, pos := range positions {
		p.Printf("  %s: %s shares (%s)\n", pos.Symbol, pos.Qty, output.SignedMoney(pos.UnrealizedPL))
	}

	results, err := svc.CloseAllPositions(ctx, c.cancelOrders)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if len(results) == 0 {
		p.Println("\nNo close orders were submitted.")
		return exitcode.Success
	}

	p.Println("\nClose orders submitted:")
	var failures *multierror.Error
	for _, r := range results {
		name := r.Symbol
		if name == "" {
			name = "Order"
		}
		if r.OK() {
			p.Success("%s: Closing...", name)
			continue
		}
		p.Failure("%s: Failed: %s", name, r.Message())
		failures = multierror.Append(failures, fmt.Errorf("%s: %s", name, r.Message()))
	}
	return batchExit(cfg, failures, len(results), errOut)
}

// parseCloseAmount reads "10" as a share count and "50%" as a percentage.
func parseCloseAmount(s string) (alpaca.CloseOptions, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(pct, 64)
		if err != nil || f <= 0 || f > 100 {
			return alpaca.CloseOptions{}, fmt.Errorf("invalid percentage %q: expected a value between 0 and 100", s)
		}
		return alpaca.CloseOptions{Percentage: f}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return alpaca.CloseOptions{}, fmt.Errorf("invalid quantity %q", s)
	}
	return alpaca.CloseOptions{Qty: s}, nil
}
