package alpaca

import "strconv"

// Account is the trading account summary.
type Account struct {
	ID                    string  `json:"id"`
	AccountNumber         string  `json:"account_number"`
	Status                string  `json:"status"`
	Currency              string  `json:"currency"`
	Cash                  float64 `json:"cash"`
	PortfolioValue        float64 `json:"portfolio_value"`
	Equity                float64 `json:"equity"`
	LastEquity            float64 `json:"last_equity"`
	BuyingPower           float64 `json:"buying_power"`
	DaytradingBuyingPower float64 `json:"daytrading_buying_power"`
	RegTBuyingPower       float64 `json:"regt_buying_power"`
	InitialMargin         float64 `json:"initial_margin"`
	MaintenanceMargin     float64 `json:"maintenance_margin"`
	LongMarketValue       float64 `json:"long_market_value"`
	ShortMarketValue      float64 `json:"short_market_value"`
	DaytradeCount         int     `json:"daytrade_count"`
	PatternDayTrader      bool    `json:"pattern_day_trader"`
	TradingBlocked        bool    `json:"trading_blocked"`
	AccountBlocked        bool    `json:"account_blocked"`
}

// DailyChange returns equity minus last equity, and that change as a ratio
// of last equity.
func (a Account) DailyChange() (float64, float64) {
	change := a.Equity - a.LastEquity
	if a.LastEquity <= 0 {
		return change, 0
	}
	return change, change / a.LastEquity
}

// Position is an open position.
type Position struct {
	Symbol                 string  `json:"symbol"`
	Qty                    string  `json:"qty"`
	Side                   string  `json:"side"`
	AvgEntryPrice          float64 `json:"avg_entry_price"`
	CurrentPrice           float64 `json:"current_price"`
	MarketValue            float64 `json:"market_value"`
	CostBasis              float64 `json:"cost_basis"`
	UnrealizedPL           float64 `json:"unrealized_pl"`
	UnrealizedPLPC         float64 `json:"unrealized_plpc"`
	UnrealizedIntradayPL   string  `json:"unrealized_intraday_pl"`
	UnrealizedIntradayPLPC float64 `json:"unrealized_intraday_plpc"`
	AssetClass             string  `json:"asset_class"`
	Exchange               string  `json:"exchange"`
}

// Quantity returns the signed position size.
func (p Position) Quantity() float64 {
	f, _ := strconv.ParseFloat(p.Qty, 64)
	return f
}

// Order is an order as reported by the API. Prices stay strings because the
// API sends null for unset values.
type Order struct {
	ID             string `json:"id"`
	ClientOrderID  string `json:"client_order_id"`
	Symbol         string `json:"symbol"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	TimeInForce    string `json:"time_in_force"`
	Qty            string `json:"qty"`
	Notional       string `json:"notional"`
	FilledQty      string `json:"filled_qty"`
	FilledAvgPrice string `json:"filled_avg_price"`
	LimitPrice     string `json:"limit_price"`
	StopPrice      string `json:"stop_price"`
	TrailPrice     string `json:"trail_price"`
	TrailPercent   string `json:"trail_percent"`
	Status         string `json:"status"`
	ExtendedHours  bool   `json:"extended_hours"`
	CreatedAt      string `json:"created_at"`
	SubmittedAt    string `json:"submitted_at"`
	FilledAt       string `json:"filled_at"`
	CanceledAt     string `json:"canceled_at"`
}

// OrderQuery filters ListOrders.
type OrderQuery struct {
	Status    string
	Limit     int
	Symbols   []string
	After     string
	Until     string
	Direction string
}

// ReplaceOrderRequest changes an open order. Empty fields are left as is.
type ReplaceOrderRequest struct {
	Qty           string `json:"qty,omitempty"`
	TimeInForce   string `json:"time_in_force,omitempty"`
	LimitPrice    string `json:"limit_price,omitempty"`
	StopPrice     string `json:"stop_price,omitempty"`
	Trail         string `json:"trail,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// CloseOptions selects part of a position to close. Percentage runs from 0
// to 100.
type CloseOptions struct {
	Qty        string
	Percentage float64
}

// BatchResult is one entry of a cancel-all or close-all response.
type BatchResult struct {
	ID     string         `json:"id"`
	Symbol string         `json:"symbol"`
	Status int            `json:"status"`
	Body   map[string]any `json:"body"`
}

// OK reports whether the sub-operation succeeded.
func (r BatchResult) OK() bool {
	if r.Status >= 200 && r.Status < 300 {
		return true
	}
	id, _ := r.Body["id"].(string)
	return id != ""
}

// Message returns the failure message carried in the body.
func (r BatchResult) Message() string {
	if msg, ok := r.Body["message"].(string); ok && msg != "" {
		return msg
	}
	return "Unknown error"
}

// Asset describes a tradable instrument.
type Asset struct {
	ID           string `json:"id"`
	Class        string `json:"class"`
	Exchange     string `json:"exchange"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Tradable     bool   `json:"tradable"`
	Marginable   bool   `json:"marginable"`
	Shortable    bool   `json:"shortable"`
	EasyToBorrow bool   `json:"easy_to_borrow"`
	Fractionable bool   `json:"fractionable"`
}

// Quote is a best bid/offer.
type Quote struct {
	AskPrice  float64 `json:"ap"`
	AskSize   float64 `json:"as"`
	BidPrice  float64 `json:"bp"`
	BidSize   float64 `json:"bs"`
	Timestamp string  `json:"t"`
}

// Trade is a single execution.
type Trade struct {
	Price     float64 `json:"p"`
	Size      float64 `json:"s"`
	Exchange  string  `json:"x"`
	Timestamp string  `json:"t"`
}

// Bar is an OHLCV bar.
type Bar struct {
	Timestamp  string  `json:"t"`
	Open       float64 `json:"o"`
	High       float64 `json:"h"`
	Low        float64 `json:"l"`
	Close      float64 `json:"c"`
	Volume     float64 `json:"v"`
	TradeCount int64   `json:"n"`
	VWAP       float64 `json:"vw"`
}

// BarsQuery filters Bars. Timeframe defaults to 1Day.
type BarsQuery struct {
	Timeframe  string
	Limit      int
	Start      string
	End        string
	Adjustment string
	Feed       string
}

// Snapshot bundles the latest market data for a symbol.
type Snapshot struct {
	LatestTrade  *Trade `json:"latestTrade"`
	LatestQuote  *Quote `json:"latestQuote"`
	MinuteBar    *Bar   `json:"minuteBar"`
	DailyBar     *Bar   `json:"dailyBar"`
	PrevDailyBar *Bar   `json:"prevDailyBar"`
}

// Clock is the market clock.
type Clock struct {
	Timestamp string `json:"timestamp"`
	IsOpen    bool   `json:"is_open"`
	NextOpen  string `json:"next_open"`
	NextClose string `json:"next_close"`
}

// CalendarDay is one trading day.
type CalendarDay struct {
	Date  string `json:"date"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Watchlist is a named list of assets.
type Watchlist struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	Assets    []Asset `json:"assets"`
}

// PortfolioHistory is equity over time.
type PortfolioHistory struct {
	Timestamp     []int64   `json:"timestamp"`
	Equity        []float64 `json:"equity"`
	ProfitLoss    []float64 `json:"profit_loss"`
	ProfitLossPct []float64 `json:"profit_loss_pct"`
	BaseValue     float64   `json:"base_value"`
	Timeframe     string    `json:"timeframe"`
}

// Activity is an account activity entry (fill, dividend, fee...).
type Activity struct {
	ID              string  `json:"id"`
	ActivityType    string  `json:"activity_type"`
	TransactionTime string  `json:"transaction_time"`
	Date            string  `json:"date"`
	Symbol          string  `json:"symbol"`
	Side            string  `json:"side"`
	Qty             string  `json:"qty"`
	Price           string  `json:"price"`
	NetAmount       float64 `json:"net_amount"`
	Description     string  `json:"description"`
}
