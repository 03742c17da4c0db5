package alpacacmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&HistoryCmd{}, &ActivitiesCmd{})
}

// HistoryCmd prints portfolio equity over a period.
type HistoryCmd struct{}

func (c *HistoryCmd) Name() string      { return "history" }
func (c *HistoryCmd) Aliases() []string { return nil }
func (c *HistoryCmd) Synopsis() string  { return "Show portfolio equity history" }
func (c *HistoryCmd) Usage() string     { return "alpaca history [period=1M] [timeframe=1D]" }
func (c *HistoryCmd) NeedsAuth() bool   { return true }

func (c *HistoryCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HistoryCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if len(args) > 2 {
		return commands.UsageError(errOut, c.Usage())
	}
	period, timeframe := "1M", "1D"
	if len(args) > 0 {
		period = args[0]
	}
	if len(args) > 1 {
		timeframe = args[1]
	}

	h, err := svc.PortfolioHistory(ctx, period, timeframe)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(h.Timestamp) == 0 {
		p.Println("No portfolio history for this period.")
		return exitcode.Success
	}

	p.Header(fmt.Sprintf("Portfolio History (%s, %s)", period, timeframe))
	p.Printf("%-20s%14s%14s%10s\n", "Date", "Equity", "P&L", "P&L %")
	for i, ts := range h.Timestamp {
		when := time.Unix(ts, 0).UTC().Format("2006-01-02")
		if timeframe != "1D" {
			when = time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
		}
		p.Printf("%-20s%14s%14s%10s\n", when,
			output.Money(at(h.Equity, i)), output.SignedMoney(at(h.ProfitLoss, i)), output.Percent(at(h.ProfitLossPct, i)))
	}

	p.Section("Summary")
	p.Field("Base Value", output.Money(h.BaseValue))
	last := len(h.Timestamp) - 1
	p.Field("Ending Equity", output.Money(at(h.Equity, last)))
	p.Field("Total P&L", output.SignedMoney(at(h.ProfitLoss, last))+" ("+output.Percent(at(h.ProfitLossPct, last))+")")
	return exitcode.Success
}

func at(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}

// ActivitiesCmd lists recent account activity such as fills and dividends.
type ActivitiesCmd struct{}

func (c *ActivitiesCmd) Name() string      { return "activities" }
func (c *ActivitiesCmd) Aliases() []string { return nil }
func (c *ActivitiesCmd) Synopsis() string  { return "List recent account activity" }
func (c *ActivitiesCmd) Usage() string     { return "alpaca activities [type, e.g. FILL|DIV] [limit=20]" }
func (c *ActivitiesCmd) NeedsAuth() bool   { return true }

func (c *ActivitiesCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ActivitiesCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if len(args) > 2 {
		return commands.UsageError(errOut, c.Usage())
	}
	var activityType string
	limit := 20
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			if n < 1 {
				return commands.UserError(errOut, "limit must be a positive integer")
			}
			limit = n
			continue
		}
		activityType = a
	}

	activities, err := svc.Activities(ctx, activityType, limit)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(activities) == 0 {
		p.Println("No activity found.")
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Account Activity (%d)", len(activities)))
	for _, a := range activities {
		when := a.TransactionTime
		if when == "" {
			when = a.Date
		}
		switch {
		case a.Symbol != "" && a.Qty != "":
			p.Printf("%s  %-8s %s %s %s @ %s\n", output.DateTime(when), a.ActivityType, a.Side, a.Qty, a.Symbol, output.Money(output.Float(a.Price)))
		case a.Symbol != "":
			p.Printf("%s  %-8s %s %s\n", output.DateTime(when), a.ActivityType, a.Symbol, output.SignedMoney(a.NetAmount))
		default:
			p.Printf("%s  %-8s %s %s\n", output.DateTime(when), a.ActivityType, output.SignedMoney(a.NetAmount), a.Description)
		}
	}
	return exitcode.Success
}
