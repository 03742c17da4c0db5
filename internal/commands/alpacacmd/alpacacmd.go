// Package alpacacmd implements the alpaca binary's commands.
package alpacacmd

import (
	"fmt"
	"strings"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands"
	"apitools/internal/output"
)

// Registry holds every alpaca command.
var Registry = commands.NewRegistry[*alpaca.Client]("alpaca")

// CredentialKeys are the environment variables login can store.
var CredentialKeys = []string{"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_OAUTH_TOKEN"}

func init() {
	commands.RegisterBuiltins(Registry, CredentialKeys...)
}

var statusLabels = map[string]string{
	"new":                  "NEW",
	"partially_filled":     "PARTIAL",
	"filled":               "FILLED",
	"done_for_day":         "DONE",
	"canceled":             "CANCELED",
	"expired":              "EXPIRED",
	"replaced":             "REPLACED",
	"pending_cancel":       "CANCELING",
	"pending_replace":      "REPLACING",
	"pending_new":          "PENDING",
	"accepted":             "ACCEPTED",
	"accepted_for_bidding": "BIDDING",
	"stopped":              "STOPPED",
	"rejected":             "REJECTED",
	"suspended":            "SUSPENDED",
	"calculated":           "CALCULATED",
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return strings.ToUpper(status)
}

func longShort(qty float64) string {
	if qty > 0 {
		return "LONG"
	}
	return "SHORT"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// priceInfo describes the price terms of an order.
func priceInfo(o alpaca.Order) string {
	switch o.Type {
	case "limit":
		return "@ " + output.Money(output.Float(o.LimitPrice)) + " limit"
	case "stop":
		return "@ " + output.Money(output.Float(o.StopPrice)) + " stop"
	case "stop_limit":
		return fmt.Sprintf("@ %s stop / %s limit", output.Money(output.Float(o.StopPrice)), output.Money(output.Float(o.LimitPrice)))
	case "trailing_stop":
		if o.TrailPercent != "" {
			return "trailing " + o.TrailPercent + "%"
		}
		return "trailing $" + o.TrailPrice
	default:
		return "market"
	}
}

func printOrder(p *output.Printer, o alpaca.Order) {
	qty, unit := o.Qty, "shares"
	if qty == "" {
		qty, unit = o.Notional, "notional"
	}
	filled := o.FilledQty
	if filled == "" {
		filled = "0"
	}

	p.Printf("[%s] %s %s %s %s %s\n", statusLabel(o.Status), strings.ToUpper(o.Side), qty, unit, o.Symbol, priceInfo(o))
	p.Field("Order ID", o.ID)
	p.Field("Type", o.Type+" | TIF: "+o.TimeInForce)
	fill := filled + "/" + qty
	if o.FilledAvgPrice != "" {
		fill += " @ " + output.Money(output.Float(o.FilledAvgPrice))
	}
	p.Field("Filled", fill)
	p.Field("Submitted", output.DateTime(o.SubmittedAt))
	if o.ExtendedHours {
		p.Field("Extended Hours", "Yes")
	}
	p.Println()
}
