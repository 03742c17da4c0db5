package alpaca

import (
	"errors"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Order sides, types and time-in-force values accepted by BuildOrder.
var (
	Sides       = []string{"buy", "sell"}
	OrderTypes  = []string{"market", "limit", "stop", "stop_limit", "trailing_stop"}
	TimeInForce = []string{"day", "gtc", "opg", "cls", "ioc", "fok"}
)

// ErrTrailRequired is returned for a trailing stop without a trail amount.
var ErrTrailRequired = errors.New("trailing_stop orders require --trail=<percent or $amount>")

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	Qty           string `json:"qty,omitempty"`
	Notional      string `json:"notional,omitempty"`
	LimitPrice    string `json:"limit_price,omitempty"`
	StopPrice     string `json:"stop_price,omitempty"`
	TrailPrice    string `json:"trail_price,omitempty"`
	TrailPercent  string `json:"trail_percent,omitempty"`
	ExtendedHours bool   `json:"extended_hours,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// OrderParams is what a user supplies on the command line.
type OrderParams struct {
	Side     string
	Symbol   string
	Qty      string
	Type     string
	Prices   []string
	TIF      string
	Trail    string
	Notional bool
	Extended bool

	// ClientOrderID is generated when empty.
	ClientOrderID string
}

// Validate checks the enum fields and quantity.
func (p OrderParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Side, validation.Required, validation.In(toAny(Sides)...).Error(`side must be "buy" or "sell"`)),
		validation.Field(&p.Symbol, validation.Required),
		validation.Field(&p.Qty, validation.Required, validation.By(positiveNumber)),
		validation.Field(&p.Type, validation.In(toAny(OrderTypes)...).Error("unknown order type")),
		validation.Field(&p.TIF, validation.In(toAny(TimeInForce)...).Error("time in force must be one of day, gtc, opg, cls, ioc, fok")),
	)
}

// BuildOrder validates params and derives the request body. No request is
// sent, so a failure here happens before any network call.
func BuildOrder(p OrderParams) (*OrderRequest, error) {
	p.Side = strings.ToLower(p.Side)
	p.Type = strings.ToLower(p.Type)
	p.TIF = strings.ToLower(p.TIF)
	if p.Type == "" {
		p.Type = "market"
	}
	if p.TIF == "" {
		p.TIF = "day"
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	req := &OrderRequest{
		Symbol:        strings.ToUpper(p.Symbol),
		Side:          p.Side,
		Type:          p.Type,
		TimeInForce:   p.TIF,
		ExtendedHours: p.Extended,
		ClientOrderID: p.ClientOrderID,
	}
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}
	if p.Notional {
		req.Notional = p.Qty
	} else {
		req.Qty = p.Qty
	}

	switch p.Type {
	case "limit":
		if len(p.Prices) < 1 {
			return nil, errors.New("limit orders require a limit price")
		}
		req.LimitPrice = p.Prices[0]
	case "stop":
		if len(p.Prices) < 1 {
			return nil, errors.New("stop orders require a stop price")
		}
		req.StopPrice = p.Prices[0]
	case "stop_limit":
		if len(p.Prices) < 2 {
			return nil, errors.New("stop_limit orders require stop price and limit price")
		}
		req.StopPrice = p.Prices[0]
		req.LimitPrice = p.Prices[1]
	case "trailing_stop":
		price, percent, err := ParseTrail(p.Trail)
		if err != nil {
			return nil, err
		}
		req.TrailPrice = price
		req.TrailPercent = percent
	}

	for _, price := range []string{req.LimitPrice, req.StopPrice} {
		if price != "" {
			if err := positiveNumber(price); err != nil {
				return nil, errors.New("price " + err.Error())
			}
		}
	}
	return req, nil
}

// ParseTrail splits a trail amount into a dollar price ("$2.50") or a
// percentage ("5%" or "5"). Exactly one of the results is set.
func ParseTrail(trail string) (price, percent string, err error) {
	trail = strings.TrimSpace(trail)
	if trail == "" {
		return "", "", ErrTrailRequired
	}
	if strings.HasPrefix(trail, "$") {
		price = strings.TrimPrefix(trail, "$")
		if err := positiveNumber(price); err != nil {
			return "", "", errors.New("trail " + err.Error())
		}
		return price, "", nil
	}
	percent = strings.Replace(trail, "%", "", 1)
	if err := positiveNumber(percent); err != nil {
		return "", "", errors.New("trail " + err.Error())
	}
	return "", percent, nil
}

func positiveNumber(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("must be a number")
	}
	if f <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
