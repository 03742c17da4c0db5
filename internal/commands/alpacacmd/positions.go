package alpacacmd

import (
	"context"
	"fmt"
	"io"
	"math"
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
	Registry.MustRegister(&PositionsCmd{}, &AssetCmd{})
}

// PositionsCmd lists open positions, or shows one in detail.
type PositionsCmd struct{}

func (c *PositionsCmd) Name() string      { return "positions" }
func (c *PositionsCmd) Aliases() []string { return []string{"position"} }
func (c *PositionsCmd) Synopsis() string  { return "List open positions or show one" }
func (c *PositionsCmd) Usage() string     { return "alpaca positions [symbol]" }
func (c *PositionsCmd) NeedsAuth() bool   { return true }

func (c *PositionsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *PositionsCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	p := output.New(out)

	if len(args) > 0 {
		symbol := strings.ToUpper(args[0])
		pos, err := svc.Position(ctx, symbol)
		if rest.IsNotFound(err) {
			p.Printf("No position found for %s\n", symbol)
			return exitcode.Success
		}
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		printPosition(p, *pos)
		return exitcode.Success
	}

	positions, err := svc.Positions(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if len(positions) == 0 {
		p.Println("No open positions.")
		return exitcode.Success
	}

	p.Header(fmt.Sprintf("Open Positions (%d)", len(positions)))
	var totalValue, totalPL float64
	for _, pos := range positions {
		p.Println(positionLine(pos))
		totalValue += pos.MarketValue
		totalPL += pos.UnrealizedPL
	}

	p.Section("Portfolio Summary")
	p.Field("Total Market Value", output.Money(totalValue))
	p.Field("Total Unrealized P&L", output.SignedMoney(totalPL))
	return exitcode.Success
}

func positionLine(pos alpaca.Position) string {
	qty := pos.Quantity()
	return fmt.Sprintf("%-6s | %s %g @ %s | Current: %s | P&L: %s (%s)",
		pos.Symbol, longShort(qty), math.Abs(qty), output.Money(pos.AvgEntryPrice),
		output.Money(pos.CurrentPrice), output.SignedMoney(pos.UnrealizedPL), output.Percent(pos.UnrealizedPLPC))
}

func printPosition(p *output.Printer, pos alpaca.Position) {
	qty := pos.Quantity()
	p.Header(pos.Symbol + " Position")
	p.Field("Side", longShort(qty))
	p.Field("Quantity", fmt.Sprintf("%g shares", math.Abs(qty)))
	p.Field("Avg Entry Price", output.Money(pos.AvgEntryPrice))
	p.Field("Current Price", output.Money(pos.CurrentPrice))
	p.Field("Market Value", output.Money(pos.MarketValue))
	p.Field("Cost Basis", output.Money(pos.CostBasis))
	p.Field("Unrealized P&L", output.SignedMoney(pos.UnrealizedPL)+" ("+output.Percent(pos.UnrealizedPLPC)+")")
	if pos.UnrealizedIntradayPL != "" {
		intraday := output.Float(pos.UnrealizedIntradayPL)
		p.Field("Intraday P&L", output.SignedMoney(intraday)+" ("+output.Percent(pos.UnrealizedIntradayPLPC)+")")
	}
	p.Field("Asset Class", pos.AssetClass)
	p.Field("Exchange", pos.Exchange)
}

// AssetCmd shows whether a symbol is tradable.
type AssetCmd struct{}

func (c *AssetCmd) Name() string      { return "asset" }
func (c *AssetCmd) Aliases() []string { return nil }
func (c *AssetCmd) Synopsis() string  { return "Show asset details" }
func (c *AssetCmd) Usage() string     { return "alpaca asset <symbol>" }
func (c *AssetCmd) NeedsAuth() bool   { return true }

func (c *AssetCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AssetCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	symbol := strings.ToUpper(args[0])

	asset, err := svc.Asset(ctx, symbol)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "asset %s not found", symbol)
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	p.Header(asset.Symbol + " " + asset.Name)
	p.Field("Class", asset.Class)
	p.Field("Exchange", asset.Exchange)
	p.Field("Status", asset.Status)
	p.Field("Tradable", yesNo(asset.Tradable))
	p.Field("Fractionable", yesNo(asset.Fractionable))
	p.Field("Marginable", yesNo(asset.Marginable))
	p.Field("Shortable", yesNo(asset.Shortable))
	p.Field("Easy to Borrow", yesNo(asset.EasyToBorrow))
	return exitcode.Success
}
