package alpacacmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&ClockCmd{})
}

// ClockCmd prints whether the market is open and today's session times.
type ClockCmd struct{}

func (c *ClockCmd) Name() string      { return "clock" }
func (c *ClockCmd) Aliases() []string { return []string{"market"} }
func (c *ClockCmd) Synopsis() string  { return "Show market status and today's schedule" }
func (c *ClockCmd) Usage() string     { return "alpaca clock" }
func (c *ClockCmd) NeedsAuth() bool   { return true }

func (c *ClockCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ClockCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	clk, err := svc.Clock(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	// The server timestamp carries the exchange offset, so "today" is the
	// exchange's day.
	now, ok := output.Time(clk.Timestamp)
	if !ok {
		now = time.Now()
	}

	p := output.New(out)
	p.Header("Market Clock")
	p.Field("Current Time", now.Format("2006-01-02 15:04 MST"))
	if clk.IsOpen {
		p.Field("Market Status", "OPEN")
		if t, ok := output.Time(clk.NextClose); ok {
			p.Field("Closes", fmt.Sprintf("%s (in %s)", t.Format("15:04"), until(now, t)))
		}
	} else {
		p.Field("Market Status", "CLOSED")
		if t, ok := output.Time(clk.NextOpen); ok {
			p.Field("Opens", fmt.Sprintf("%s (in %s)", t.Format("2006-01-02 15:04"), until(now, t)))
		}
	}

	today := now.Format("2006-01-02")
	days, err := svc.Calendar(ctx, today, today)
	if err != nil {
		cfg.Logger().Debug("fetching calendar", "error", err)
		return exitcode.Success
	}
	for _, day := range days {
		if day.Date != today {
			continue
		}
		p.Section("Today's Schedule (" + day.Date + ")")
		p.Field("Market Open", day.Open)
		p.Field("Market Close", day.Close)
	}
	return exitcode.Success
}

// until renders the time from now to t as "1d 2h 3m", omitting a zero day
// count.
func until(now, t time.Time) string {
	d := t.Sub(now)
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
