package alpacacmd

import (
	"context"
	"fmt"
	"io"
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
	Registry.MustRegister(&OrdersCmd{}, &ReplaceOrderCmd{})
}

// OrdersCmd lists orders by status.
type OrdersCmd struct {
	symbols []string
}

func (c *OrdersCmd) Name() string      { return "orders" }
func (c *OrdersCmd) Aliases() []string { return nil }
func (c *OrdersCmd) Synopsis() string  { return "List orders" }
func (c *OrdersCmd) Usage() string {
	return "alpaca orders [open|closed|all] [limit] [--symbols AAPL,MSFT]"
}
func (c *OrdersCmd) NeedsAuth() bool { return true }

func (c *OrdersCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringSliceVar(&c.symbols, "symbols", nil, "")
}

func (c *OrdersCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	status := "open"
	if len(args) > 0 {
		status = strings.ToLower(args[0])
	}
	if status != "open" && status != "closed" && status != "all" {
		return commands.UserError(errOut, "status must be open, closed or all")
	}
	limit := 50
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return commands.UserError(errOut, "limit must be a positive integer")
		}
		limit = n
	}

	symbols := make([]string, len(c.symbols))
	for i, s := range c.symbols {
		symbols[i] = strings.ToUpper(s)
	}

	orders, err := svc.Orders(ctx, alpaca.OrderQuery{Status: status, Limit: limit, Symbols: symbols})
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(orders) == 0 {
		p.Printf("No %s orders found.\n", status)
		return exitcode.Success
	}

	p.Header(fmt.Sprintf("%s Orders (%d)", strings.ToUpper(status[:1])+status[1:], len(orders)))
	for _, o := range orders {
		printOrder(p, o)
	}
	return exitcode.Success
}

// ReplaceOrderCmd amends the quantity, prices or time in force of an open order.
type ReplaceOrderCmd struct {
	qty        string
	limitPrice string
	stopPrice  string
	trail      string
	tif        string
}

func (c *ReplaceOrderCmd) Name() string      { return "replace-order" }
func (c *ReplaceOrderCmd) Aliases() []string { return nil }
func (c *ReplaceOrderCmd) Synopsis() string  { return "Replace an open order" }
func (c *ReplaceOrderCmd) Usage() string {
	return "alpaca replace-order <order-id> [--qty <n>] [--limit-price <p>] [--stop-price <p>] [--trail <t>] [--tif <tif>]"
}
func (c *ReplaceOrderCmd) NeedsAuth() bool { return true }

func (c *ReplaceOrderCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.qty, "qty", "", "")
	fs.StringVar(&c.limitPrice, "limit-price", "", "")
	fs.StringVar(&c.stopPrice, "stop-price", "", "")
	fs.StringVar(&c.trail, "trail", "", "")
	fs.StringVar(&c.tif, "tif", "", "")
}

func (c *ReplaceOrderCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	id, err := parseOrderID(args[0])
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}

	req := &alpaca.ReplaceOrderRequest{
		Qty:         c.qty,
		LimitPrice:  c.limitPrice,
		StopPrice:   c.stopPrice,
		Trail:       strings.TrimPrefix(strings.Replace(c.trail, "%", "", 1), "$"),
		TimeInForce: strings.ToLower(c.tif),
	}
	if *req == (alpaca.ReplaceOrderRequest{}) {
		return commands.UserError(errOut, "nothing to change: pass at least one of --qty, --limit-price, --stop-price, --trail, --tif")
	}

	order, err := svc.ReplaceOrder(ctx, id, req)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if cfg.Quiet {
		p.Println(order.ID)
		return exitcode.Success
	}
	p.Success("Order %s replaced by %s", id, order.ID)
	printOrder(p, *order)
	return exitcode.Success
}
