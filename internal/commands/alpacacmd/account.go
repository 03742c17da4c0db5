package alpacacmd

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&AccountCmd{})
}

// AccountCmd prints balances, buying power and daily P&L.
type AccountCmd struct{}

func (c *AccountCmd) Name() string      { return "account" }
func (c *AccountCmd) Aliases() []string { return nil }
func (c *AccountCmd) Synopsis() string  { return "Show account balances and daily P&L" }
func (c *AccountCmd) Usage() string     { return "alpaca account" }
func (c *AccountCmd) NeedsAuth() bool   { return true }

func (c *AccountCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AccountCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	acct, err := svc.Account(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	p.Header("Alpaca Account " + svc.Mode())
	p.Field("Account ID", acct.ID)
	p.Field("Status", acct.Status)
	p.Field("Currency", acct.Currency)
	p.Field("Pattern Day Trader", yesNo(acct.PatternDayTrader))
	p.Field("Day Trades", acct.DaytradeCount)
	p.Field("Trading Blocked", yesNo(acct.TradingBlocked))
	p.Field("Account Blocked", yesNo(acct.AccountBlocked))

	p.Section("Balances")
	p.Field("Cash", output.Money(acct.Cash))
	p.Field("Portfolio Value", output.Money(acct.PortfolioValue))
	p.Field("Equity", output.Money(acct.Equity))
	p.Field("Last Equity", output.Money(acct.LastEquity))

	p.Section("Buying Power")
	p.Field("Buying Power", output.Money(acct.BuyingPower))
	p.Field("Daytrading Buying Power", output.Money(acct.DaytradingBuyingPower))
	p.Field("RegT Buying Power", output.Money(acct.RegTBuyingPower))

	p.Section("Margins")
	p.Field("Initial Margin", output.Money(acct.InitialMargin))
	p.Field("Maintenance Margin", output.Money(acct.MaintenanceMargin))
	if acct.LongMarketValue != 0 {
		p.Field("Long Market Value", output.Money(acct.LongMarketValue))
	}
	if acct.ShortMarketValue != 0 {
		p.Field("Short Market Value", output.Money(acct.ShortMarketValue))
	}

	change, ratio := acct.DailyChange()
	p.Section("Daily P&L")
	p.Field("Change", output.SignedMoney(change)+" ("+output.Percent(ratio)+")")

	return exitcode.Success
}
