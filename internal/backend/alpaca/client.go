// Package alpaca is a client for the Alpaca trading and market data APIs.
package alpaca

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"apitools/internal/config"
	"apitools/internal/rest"
)

// BasePath is the API version prefix on both hosts.
const BasePath = "/v2"

// Client talks to the trading host and the market data host.
type Client struct {
	trading *rest.Client
	data    *rest.Client
	paper   bool
}

// New creates a client from resolved settings.
func New(cfg config.Alpaca, opts ...rest.Option) *Client {
	var creds rest.Credentials = rest.HeaderPair{
		KeyHeader:    "APCA-API-KEY-ID",
		Key:          cfg.APIKey,
		SecretHeader: "APCA-API-SECRET-KEY",
		Secret:       cfg.APISecret,
	}
	if cfg.OAuthToken != "" {
		creds = rest.NewBearerToken(cfg.OAuthToken)
	}

	opts = append([]rest.Option{rest.WithMessage(rest.Fields("message", "code"))}, opts...)
	return &Client{
		trading: rest.New(cfg.TradingHost, BasePath, creds, opts...),
		data:    rest.New(cfg.DataHost, BasePath, creds, opts...),
		paper:   cfg.Paper,
	}
}

// NewFromConfig loads ALPACA_* settings and creates a client.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	settings, err := cfg.LoadAlpaca(ctx)
	if err != nil {
		return nil, err
	}
	return New(*settings, rest.WithLogger(cfg.Logger())), nil
}

// Mode returns "(Paper Trading)" or "(LIVE TRADING)".
func (c *Client) Mode() string {
	if c.paper {
		return "(Paper Trading)"
	}
	return "(LIVE TRADING)"
}

// Account returns the account summary.
func (c *Client) Account(ctx context.Context) (*Account, error) {
	var a Account
	if err := c.trading.Into(ctx, http.MethodGet, "/account", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// PortfolioHistory returns equity over a period ("1M") at a timeframe ("1D").
func (c *Client) PortfolioHistory(ctx context.Context, period, timeframe string) (*PortfolioHistory, error) {
	path := rest.WithQuery("/account/portfolio/history", url.Values{
		"period":    {period},
		"timeframe": {timeframe},
	})
	var h PortfolioHistory
	if err := c.trading.Into(ctx, http.MethodGet, path, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Activities returns recent account activities, optionally of one type.
func (c *Client) Activities(ctx context.Context, activityType string, pageSize int) ([]Activity, error) {
	path := "/account/activities"
	if activityType != "" {
		path += "/" + url.PathEscape(activityType)
	}
	path = rest.WithQuery(path, url.Values{"page_size": {itoa(pageSize)}})
	var out []Activity
	if err := c.trading.Into(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Positions returns all open positions.
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	var out []Position
	if err := c.trading.Into(ctx, http.MethodGet, "/positions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Position returns the open position for symbol.
func (c *Client) Position(ctx context.Context, symbol string) (*Position, error) {
	var p Position
	if err := c.trading.Into(ctx, http.MethodGet, rest.Path("/positions/%s", symbol), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ClosePosition submits an order closing all or part of a position.
func (c *Client) ClosePosition(ctx context.Context, symbol string, opts CloseOptions) (*Order, error) {
	q := url.Values{"qty": {opts.Qty}}
	if opts.Percentage > 0 {
		q.Set("percentage", strconv.FormatFloat(opts.Percentage, 'f', -1, 64))
	}
	path := rest.WithQuery(rest.Path("/positions/%s", symbol), q)
	var o Order
	if err := c.trading.Into(ctx, http.MethodDelete, path, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CloseAllPositions liquidates every position, canceling open orders first
// when cancelOrders is set. Each entry reports one symbol.
func (c *Client) CloseAllPositions(ctx context.Context, cancelOrders bool) ([]BatchResult, error) {
	path := rest.WithQuery("/positions", url.Values{"cancel_orders": {strconv.FormatBool(cancelOrders)}})
	return c.batch(ctx, path)
}

// Orders lists orders.
func (c *Client) Orders(ctx context.Context, q OrderQuery) ([]Order, error) {
	path := rest.WithQuery("/orders", url.Values{
		"status":    {q.Status},
		"limit":     {itoa(q.Limit)},
		"after":     {q.After},
		"until":     {q.Until},
		"direction": {q.Direction},
		"symbols":   {strings.Join(q.Symbols, ",")},
	})
	var out []Order
	if err := c.trading.Into(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Order returns one order by id.
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := c.trading.Into(ctx, http.MethodGet, rest.Path("/orders/%s", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder submits an order.
func (c *Client) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	var o Order
	if err := c.trading.Into(ctx, http.MethodPost, "/orders", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ReplaceOrder amends an open order.
func (c *Client) ReplaceOrder(ctx context.Context, id string, req *ReplaceOrderRequest) (*Order, error) {
	var o Order
	if err := c.trading.Into(ctx, http.MethodPatch, rest.Path("/orders/%s", id), req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CancelOrder cancels one order.
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	_, err := c.trading.Delete(ctx, rest.Path("/orders/%s", id))
	return err
}

// CancelAllOrders cancels every open order. Each entry reports one order.
func (c *Client) CancelAllOrders(ctx context.Context) ([]BatchResult, error) {
	return c.batch(ctx, "/orders")
}

func (c *Client) batch(ctx context.Context, path string) ([]BatchResult, error) {
	raw, err := c.trading.Delete(ctx, path)
	if err != nil {
		return nil, err
	}
	// an empty body decodes to an empty object, meaning nothing was affected
	if _, ok := raw.([]any); !ok {
		return nil, nil
	}
	var out []BatchResult
	if err := rest.Decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Asset returns one asset by symbol.
func (c *Client) Asset(ctx context.Context, symbol string) (*Asset, error) {
	var a Asset
	if err := c.trading.Into(ctx, http.MethodGet, rest.Path("/assets/%s", symbol), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// LatestQuote returns the latest quote for symbol, or nil when there is none.
func (c *Client) LatestQuote(ctx context.Context, symbol string) (*Quote, error) {
	var resp struct {
		Quote *Quote `json:"quote"`
	}
	if err := c.data.Into(ctx, http.MethodGet, rest.Path("/stocks/%s/quotes/latest", symbol), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Quote, nil
}

// LatestTrade returns the latest trade for symbol, or nil when there is none.
func (c *Client) LatestTrade(ctx context.Context, symbol string) (*Trade, error) {
	var resp struct {
		Trade *Trade `json:"trade"`
	}
	if err := c.data.Into(ctx, http.MethodGet, rest.Path("/stocks/%s/trades/latest", symbol), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trade, nil
}

// Bars returns historical bars in chronological order.
func (c *Client) Bars(ctx context.Context, symbol string, q BarsQuery) ([]Bar, error) {
	timeframe := q.Timeframe
	if timeframe == "" {
		timeframe = "1Day"
	}
	path := rest.WithQuery(rest.Path("/stocks/%s/bars", symbol), url.Values{
		"timeframe":  {timeframe},
		"start":      {q.Start},
		"end":        {q.End},
		"limit":      {itoa(q.Limit)},
		"adjustment": {q.Adjustment},
		"feed":       {q.Feed},
	})
	var resp struct {
		Bars []Bar `json:"bars"`
	}
	if err := c.data.Into(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Bars, nil
}

// Snapshots returns snapshots keyed by symbol.
func (c *Client) Snapshots(ctx context.Context, symbols []string) (map[string]Snapshot, error) {
	path := rest.WithQuery("/stocks/snapshots", url.Values{"symbols": {strings.Join(symbols, ",")}})
	out := map[string]Snapshot{}
	if err := c.data.Into(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clock returns the market clock.
func (c *Client) Clock(ctx context.Context) (*Clock, error) {
	var clk Clock
	if err := c.trading.Into(ctx, http.MethodGet, "/clock", nil, &clk); err != nil {
		return nil, err
	}
	return &clk, nil
}

// Calendar returns trading days between start and end (YYYY-MM-DD).
func (c *Client) Calendar(ctx context.Context, start, end string) ([]CalendarDay, error) {
	path := rest.WithQuery("/calendar", url.Values{"start": {start}, "end": {end}})
	var out []CalendarDay
	if err := c.trading.Into(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Watchlists returns all watchlists (without assets).
func (c *Client) Watchlists(ctx context.Context) ([]Watchlist, error) {
	var out []Watchlist
	if err := c.trading.Into(ctx, http.MethodGet, "/watchlists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Watchlist returns one watchlist with its assets.
func (c *Client) Watchlist(ctx context.Context, id string) (*Watchlist, error) {
	var w Watchlist
	if err := c.trading.Into(ctx, http.MethodGet, rest.Path("/watchlists/%s", id), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWatchlist creates a watchlist.
func (c *Client) CreateWatchlist(ctx context.Context, name string, symbols []string) (*Watchlist, error) {
	if symbols == nil {
		symbols = []string{}
	}
	body := map[string]any{"name": name, "symbols": symbols}
	var w Watchlist
	if err := c.trading.Into(ctx, http.MethodPost, "/watchlists", body, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// AddToWatchlist appends symbol to a watchlist.
func (c *Client) AddToWatchlist(ctx context.Context, id, symbol string) (*Watchlist, error) {
	var w Watchlist
	if err := c.trading.Into(ctx, http.MethodPost, rest.Path("/watchlists/%s", id), map[string]string{"symbol": symbol}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// RemoveFromWatchlist removes symbol from a watchlist.
func (c *Client) RemoveFromWatchlist(ctx context.Context, id, symbol string) error {
	_, err := c.trading.Delete(ctx, rest.Path("/watchlists/%s/%s", id, symbol))
	return err
}

// DeleteWatchlist deletes a watchlist.
func (c *Client) DeleteWatchlist(ctx context.Context, id string) error {
	_, err := c.trading.Delete(ctx, rest.Path("/watchlists/%s", id))
	return err
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
