package alpacacmd

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&OrderCmd{})
}

// OrderCmd places an order.
type OrderCmd struct {
	tif           string
	trail         string
	clientOrderID string
	extended      bool
	notional      bool
}

func (c *OrderCmd) Name() string      { return "order" }
func (c *OrderCmd) Aliases() []string { return nil }
func (c *OrderCmd) Synopsis() string  { return "Place an order" }
func (c *OrderCmd) Usage() string {
	return "alpaca order <buy|sell> <symbol> <qty> [market|limit|stop|stop_limit|trailing_stop] [price] [limit-price] " +
		"[--tif day|gtc|opg|cls|ioc|fok] [--trail 5%|$2.50] [--notional] [--extended] [--client-order-id <id>]"
}
func (c *OrderCmd) NeedsAuth() bool { return true }

func (c *OrderCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.tif, "tif", "day", "")
	fs.StringVar(&c.trail, "trail", "", "")
	fs.StringVar(&c.clientOrderID, "client-order-id", "", "")
	fs.BoolVar(&c.extended, "extended", false, "")
	fs.BoolVar(&c.notional, "notional", false, "")
}

func (c *OrderCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 3 {
		return commands.UsageError(errOut, c.Usage())
	}
	params := alpaca.OrderParams{
		Side:          args[0],
		Symbol:        args[1],
		Qty:           args[2],
		TIF:           c.tif,
		Trail:         c.trail,
		Notional:      c.notional,
		Extended:      c.extended,
		ClientOrderID: c.clientOrderID,
	}
	if len(args) > 3 {
		params.Type = args[3]
		params.Prices = args[4:]
	}

	req, err := alpaca.BuildOrder(params)
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}

	p := output.New(out)
	if !cfg.Quiet {
		printOrderSummary(p, svc.Mode(), req)
	}

	order, err := svc.CreateOrder(ctx, req)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	if cfg.Quiet {
		p.Println(order.ID)
		return exitcode.Success
	}
	p.Section("Order Placed Successfully")
	p.Field("Order ID", order.ID)
	p.Field("Client Order ID", order.ClientOrderID)
	p.Field("Status", order.Status)
	p.Field("Created", output.DateTime(order.CreatedAt))
	if order.FilledQty != "" && order.FilledQty != "0" {
		p.Field("Filled", order.FilledQty+" @ "+output.Money(output.Float(order.FilledAvgPrice)))
	}
	return exitcode.Success
}

func printOrderSummary(p *output.Printer, mode string, req *alpaca.OrderRequest) {
	amount := req.Qty
	if amount == "" {
		amount = "$" + req.Notional
	}
	p.Header("Order Summary " + mode)
	p.Field("Action", strings.ToUpper(req.Side)+" "+amount+" "+req.Symbol)
	p.Field("Type", strings.ToUpper(req.Type))
	if req.LimitPrice != "" {
		p.Field("Limit Price", "$"+req.LimitPrice)
	}
	if req.StopPrice != "" {
		p.Field("Stop Price", "$"+req.StopPrice)
	}
	if req.TrailPercent != "" {
		p.Field("Trail", req.TrailPercent+"%")
	}
	if req.TrailPrice != "" {
		p.Field("Trail", "$"+req.TrailPrice)
	}
	p.Field("Time in Force", strings.ToUpper(req.TimeInForce))
	if req.ExtendedHours {
		p.Field("Extended Hours", "Yes")
	}
}
