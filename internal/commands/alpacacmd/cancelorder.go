package alpacacmd

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
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
	Registry.MustRegister(&CancelOrderCmd{})
}

// CancelOrderCmd cancels one order or every open order.
type CancelOrderCmd struct {
	all bool
}

func (c *CancelOrderCmd) Name() string      { return "cancel-order" }
func (c *CancelOrderCmd) Aliases() []string { return []string{"cancel"} }
func (c *CancelOrderCmd) Synopsis() string  { return "Cancel an order, or all open orders" }
func (c *CancelOrderCmd) Usage() string     { return "alpaca cancel-order <order-id> | --all" }
func (c *CancelOrderCmd) NeedsAuth() bool   { return true }

func (c *CancelOrderCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *CancelOrderCmd) Run(ctx context.Context, cfg *config.Config, svc *alpaca.Client, args []string, out, errOut io.Writer) int {
	if c.all {
		if len(args) > 0 {
			return commands.UsageError(errOut, c.Usage())
		}
		return c.cancelAll(ctx, cfg, svc, out, errOut)
	}
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}

	id, err := parseOrderID(args[0])
	if err != nil {
		return commands.UserError(errOut, "%v", err)
	}

	p := output.New(out)
	// details are best effort
	order, err := svc.Order(ctx, id)
	if err != nil {
		cfg.Logger().Debug("fetching order before cancel", "id", id, "error", err)
	}

	if err := svc.CancelOrder(ctx, id); err != nil {
		if rest.IsNotFound(err) {
			return commands.UserError(errOut, "order %s not found", id)
		}
		return commands.BackendError(errOut, err)
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	if order != nil {
		p.Printf("Canceling: %s %s %s %s\n", statusLabel(order.Status), order.Side, order.Qty, order.Symbol)
	}
	p.Success("Order %s canceled successfully.", id)
	return exitcode.Success
}

func (c *CancelOrderCmd) cancelAll(ctx context.Context, cfg *config.Config, svc *alpaca.Client, out, errOut io.Writer) int {
	results, err := svc.CancelAllOrders(ctx)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(results) == 0 {
		p.Println("No open orders to cancel.")
		return exitcode.Success
	}

	p.Header(fmt.Sprintf("Canceled %d Order(s)", len(results)))
	var failures *multierror.Error
	for _, r := range results {
		if r.OK() {
			p.Success("Canceled: %s", r.ID)
			continue
		}
		p.Failure("Failed to cancel: %s - %s", r.ID, r.Message())
		failures = multierror.Append(failures, fmt.Errorf("%s: %s", r.ID, r.Message()))
	}
	return batchExit(cfg, failures, len(results), errOut)
}

// batchExit logs collected failures and fails only when nothing succeeded.
func batchExit(cfg *config.Config, failures *multierror.Error, total int, errOut io.Writer) int {
	if failures == nil {
		return exitcode.Success
	}
	cfg.Logger().Debug("batch finished with failures", "failed", failures.Len(), "total", total, "errors", failures.Error())
	if failures.Len() == total {
		fmt.Fprintf(errOut, "error: all %d operations failed\n", total)
		return exitcode.BackendError
	}
	return exitcode.Success
}

func parseOrderID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid order id %q: expected a UUID", s)
	}
	return id.String(), nil
}
