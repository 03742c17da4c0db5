package alpacacmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&QuoteCmd{})
}

// QuoteCmd prints the latest quote and trade for one symbol, or a snapshot
// line per symbol.
type QuoteCmd struct{}

func (c *QuoteCmd) Name() string      { return "quote" }
func (c *QuoteCmd) Aliases() []string { return nil }
func (c *QuoteCmd) Synopsis() string  { return "Show latest quotes" }
func (c *QuoteCmd) Usage() string     { return "alpaca quote <symbol> [symbol...]" }
func (c *QuoteCmd) NeedsAuth() bool   { return true }

func (c *QuoteCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *QuoteCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return commands.UsageError(errOut, c.Usage())
	}
	symbols := make([]string, len(args))
	for i, a := range args {
		symbols[i] = strings.ToUpper(a)
	}

	p := output.New(out)
	if len(symbols) == 1 {
		return c.single(ctx, svc, symbols[0], p, errOut)
	}

	snaps, err := svc.Snapshots(ctx, symbols)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p.Header("Market Quotes")
	for _, sym := range symbols {
		snap, ok := snaps[sym]
		if !ok || (snap.LatestTrade == nil && snap.LatestQuote == nil) {
			p.Printf("%-6s | No data available\n", sym)
			continue
		}
		p.Println(snapshotLine(sym, snap))
	}
	return exitcode.Success
}

func (c *QuoteCmd) single(ctx context.Context, svc *alpaca.Client, symbol string, p *output.Printer, errOut io.Writer) int {
	var quote *alpaca.Quote
	var trade *alpaca.Trade

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = svc.LatestQuote(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		trade, err = svc.LatestTrade(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return commands.BackendError(errOut, err)
	}

	p.Header(symbol + " Quote")
	if quote != nil {
		p.Field("Bid", fmt.Sprintf("%s x %g", output.Money(quote.BidPrice), quote.BidSize))
		p.Field("Ask", fmt.Sprintf("%s x %g", output.Money(quote.AskPrice), quote.AskSize))
		if quote.BidPrice > 0 && quote.AskPrice > 0 {
			spread := quote.AskPrice - quote.BidPrice
			p.Field("Spread", fmt.Sprintf("%s (%.3f%%)", output.Money(spread), spread/quote.BidPrice*100))
		}
		p.Field("Quote Time", output.DateTime(quote.Timestamp))
	}
	if trade != nil {
		p.Println()
		p.Field("Last Trade", output.Money(trade.Price))
		p.Field("Size", fmt.Sprintf("%g shares", trade.Size))
		p.Field("Trade Time", output.DateTime(trade.Timestamp))
		exchange := trade.Exchange
		if exchange == "" {
			exchange = "N/A"
		}
		p.Field("Exchange", exchange)
	}
	return exitcode.Success
}

func snapshotLine(symbol string, s alpaca.Snapshot) string {
	na := func(v float64, ok bool) string {
		if !ok || v == 0 {
			return "N/A"
		}
		return output.Money(v)
	}

	var last float64
	switch {
	case s.LatestTrade != nil:
		last = s.LatestTrade.Price
	case s.LatestQuote != nil:
		last = s.LatestQuote.AskPrice
	}
	q := s.LatestQuote
	line := fmt.Sprintf("%-6s | Last: %s | Bid: %s | Ask: %s", symbol,
		na(last, true), na(bidOf(q), q != nil), na(askOf(q), q != nil))

	if s.DailyBar != nil && s.PrevDailyBar != nil && s.PrevDailyBar.Close != 0 {
		change := s.DailyBar.Close - s.PrevDailyBar.Close
		line += fmt.Sprintf(" | %s (%s)", output.SignedMoney(change), output.Percent(change/s.PrevDailyBar.Close))
	}
	return line
}

func bidOf(q *alpaca.Quote) float64 {
	if q == nil {
		return 0
	}
	return q.BidPrice
}

func askOf(q *alpaca.Quote) float64 {
	if q == nil {
		return 0
	}
	return q.AskPrice
}
