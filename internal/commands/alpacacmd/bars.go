package alpacacmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&BarsCmd{})
}

// BarsCmd prints historical OHLCV bars, newest first, with a period summary.
type BarsCmd struct {
	start string
	end   string
}

func (c *BarsCmd) Name() string      { return "bars" }
func (c *BarsCmd) Aliases() []string { return nil }
func (c *BarsCmd) Synopsis() string  { return "Show price history" }
func (c *BarsCmd) Usage() string {
	return "alpaca bars <symbol> [1Min|5Min|15Min|30Min|1Hour|4Hour|1Day|1Week|1Month] [limit] [--start <date>] [--end <date>]"
}
func (c *BarsCmd) NeedsAuth() bool { return true }

func (c *BarsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.start, "start", "", "")
	fs.StringVar(&c.end, "end", "", "")
}

func (c *BarsCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 1 || len(args) > 3 {
		return commands.UsageError(errOut, c.Usage())
	}
	symbol := strings.ToUpper(args[0])
	q := alpaca.BarsQuery{Timeframe: "1Day", Limit: 10, Start: c.start, End: c.end}
	if len(args) > 1 {
		q.Timeframe = args[1]
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 {
			return commands.UserError(errOut, "limit must be a positive integer")
		}
		q.Limit = n
	}

	bars, err := svc.Bars(ctx, symbol, q)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(bars) == 0 {
		p.Printf("No bar data available for %s\n", symbol)
		return exitcode.Success
	}

	intraday := strings.Contains(q.Timeframe, "Min") || strings.Contains(q.Timeframe, "Hour")

	p.Header(fmt.Sprintf("%s Price History (%s)", symbol, q.Timeframe))
	p.Printf("%-20s%10s%10s%10s%10s%12s\n", "Date/Time", "Open", "High", "Low", "Close", "Volume")
	p.Println(strings.Repeat("-", 72))

	high, low := math.Inf(-1), math.Inf(1)
	var volume float64
	for i := len(bars) - 1; i >= 0; i-- {
		b := bars[i]
		when := output.Date(b.Timestamp)
		if intraday {
			when = output.DateTime(b.Timestamp)
		}
		p.Printf("%-20s%10s%10s%10s%10s%12s\n", when,
			output.Money(b.Open), output.Money(b.High), output.Money(b.Low), output.Money(b.Close),
			output.Count(int64(b.Volume)))
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
		volume += b.Volume
	}

	first, last := bars[0].Close, bars[len(bars)-1].Close
	change := last - first
	var ratio float64
	if first != 0 {
		ratio = change / first
	}

	p.Section("Summary")
	p.Field("Period High", output.Money(high))
	p.Field("Period Low", output.Money(low))
	p.Field("Avg Volume", output.Count(int64(math.Round(volume/float64(len(bars))))))
	p.Field("Period Change", output.SignedMoney(change)+" ("+output.Percent(ratio)+")")
	return exitcode.Success
}
