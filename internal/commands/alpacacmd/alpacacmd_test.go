package alpacacmd_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitools/internal/backend/alpaca"
	"apitools/internal/commands/alpacacmd"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/testutil"
)

const orderID = "61e69015-8549-4bfd-b9c3-01e75843f47d"

func newClient(t *testing.T, srv *testutil.Server) *alpaca.Client {
	t.Helper()
	return alpaca.New(config.Alpaca{
		APIKey:      "k",
		APISecret:   "s",
		Paper:       true,
		TradingHost: srv.Host(),
		DataHost:    srv.Host(),
	}, srv.Options()...)
}

func countPrefix(out, prefix string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{
		"account", "positions", "orders", "order", "cancel-order", "close-position", "quote", "bars",
		"clock", "watchlist", "history", "activities", "asset", "replace-order",
		"login", "logout", "help", "version",
	} {
		_, ok := alpacacmd.Registry.Find(name)
		assert.True(t, ok, name)
	}
}

func TestAccount(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/account", 200, `{
		"id":"acc-1","status":"ACTIVE","currency":"USD","cash":"1234.5","portfolio_value":"2100",
		"equity":"2100","last_equity":"2000","buying_power":"4000","long_market_value":"865.5"
	}`)

	stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.AccountCmd{}, newClient(t, srv))

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Alpaca Account (Paper Trading) ===\n")
	assert.Contains(t, stdout, "  Cash: $1,234.50\n")
	assert.Contains(t, stdout, "  Long Market Value: $865.50\n")
	assert.NotContains(t, stdout, "Short Market Value")
	assert.Contains(t, stdout, "  Change: +$100.00 (+5.00%)\n")
}

func TestPositions_NotFound(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/positions/ZZZ", 404, `{"code":40410000,"message":"position does not exist"}`)

	stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.PositionsCmd{}, newClient(t, srv), "zzz")

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "No position found for ZZZ\n", stdout)
}

func TestPositions_List(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/positions", 200, `[
		{"symbol":"AAPL","qty":"10","avg_entry_price":"150","current_price":"160","market_value":"1600","unrealized_pl":"100","unrealized_plpc":"0.0667"},
		{"symbol":"TSLA","qty":"-2","avg_entry_price":"200","current_price":"210","market_value":"-420","unrealized_pl":"-20","unrealized_plpc":"-0.05"}
	]`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.PositionsCmd{}, newClient(t, srv))

	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "=== Open Positions (2) ===")
	assert.Contains(t, stdout, "AAPL   | LONG 10 @ $150.00 | Current: $160.00 | P&L: +$100.00 (+6.67%)")
	assert.Contains(t, stdout, "TSLA   | SHORT 2 @ $200.00 | Current: $210.00 | P&L: -$20.00 (-5.00%)")
	assert.Contains(t, stdout, "  Total Market Value: $1,180.00\n")
	assert.Contains(t, stdout, "  Total Unrealized P&L: +$80.00\n")
}

func TestOrders_InvalidStatus(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &alpacacmd.OrdersCmd{}, newClient(t, srv), "pending")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: status must be open, closed or all\n", stderr)
	assert.Empty(t, srv.Requests())
}

func TestOrders_List(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/orders", 200, `[
		{"id":"o1","symbol":"AAPL","side":"buy","type":"limit","time_in_force":"day","qty":"5","filled_qty":"0","limit_price":"150","status":"partially_filled","submitted_at":"2024-03-01T14:30:00Z"},
		{"id":"o2","symbol":"SPY","side":"sell","type":"trailing_stop","time_in_force":"gtc","qty":"1","trail_percent":"5","status":"new","extended_hours":true}
	]`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.OrdersCmd{}, newClient(t, srv), "open", "--symbols", "aapl,spy")

	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "=== Open Orders (2) ===")
	assert.Contains(t, stdout, "[PARTIAL] BUY 5 shares AAPL @ $150.00 limit\n")
	assert.Contains(t, stdout, "[NEW] SELL 1 shares SPY trailing 5%\n")
	assert.Contains(t, stdout, "  Submitted: 2024-03-01 14:30\n")
	assert.Contains(t, stdout, "  Extended Hours: Yes\n")

	req, _ := srv.Find(http.MethodGet, "/v2/orders")
	assert.Equal(t, "AAPL,SPY", req.Query.Get("symbols"))
	assert.Equal(t, "50", req.Query.Get("limit"))
}

func TestOrders_Empty(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/orders", 200, `[]`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.OrdersCmd{}, newClient(t, srv), "closed", "5")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "No closed orders found.\n", stdout)
}

func TestOrder_TrailingStop(t *testing.T) {
	tests := []struct {
		name        string
		trail       string
		wantField   string
		wantValue   string
		absentField string
	}{
		{name: "percent", trail: "--trail=5%", wantField: "trail_percent", wantValue: "5", absentField: "trail_price"},
		{name: "dollars", trail: "--trail=$2.50", wantField: "trail_price", wantValue: "2.50", absentField: "trail_percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewServer(t)
			srv.Handle(http.MethodPost, "/v2/orders", 200, `{"id":"o-1","status":"accepted","created_at":"2024-03-01T14:30:00Z"}`)

			stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.OrderCmd{}, newClient(t, srv),
				"sell", "aapl", "10", "trailing_stop", tt.trail, "--tif", "gtc")

			require.Equal(t, exitcode.Success, code, stderr)
			assert.Contains(t, stdout, "=== Order Summary (Paper Trading) ===")
			assert.Contains(t, stdout, "  Order ID: o-1\n")

			req, ok := srv.Find(http.MethodPost, "/v2/orders")
			require.True(t, ok)
			body := req.JSON(t)
			assert.Equal(t, tt.wantValue, body[tt.wantField])
			assert.NotContains(t, body, tt.absentField)
			assert.Equal(t, "AAPL", body["symbol"])
			assert.Equal(t, "gtc", body["time_in_force"])
			assert.NotEmpty(t, body["client_order_id"])
		})
	}
}

func TestOrder_TrailingStopWithoutTrail(t *testing.T) {
	srv := testutil.NewServer(t)

	stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.OrderCmd{}, newClient(t, srv), "sell", "AAPL", "10", "trailing_stop")

	assert.Equal(t, exitcode.UserError, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "error: trailing_stop orders require --trail=<percent or $amount>\n", stderr)
	assert.Empty(t, srv.Requests())
}

func TestOrder_Quiet(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/v2/orders", 200, `{"id":"o-7","status":"accepted"}`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.OrderCmd{}, newClient(t, srv),
		"buy", "MSFT", "1000", "--notional", "--client-order-id", "abc", "--quiet")

	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "o-7\n", stdout)

	req, _ := srv.Find(http.MethodPost, "/v2/orders")
	body := req.JSON(t)
	assert.Equal(t, "1000", body["notional"])
	assert.NotContains(t, body, "qty")
	assert.Equal(t, "abc", body["client_order_id"])
}

func TestCancelOrder_InvalidID(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &alpacacmd.CancelOrderCmd{}, newClient(t, srv), "not-a-uuid")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, `invalid order id "not-a-uuid"`)
	assert.Empty(t, srv.Requests())
}

func TestCancelOrder_Single(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/orders/"+orderID, 200, `{"id":"`+orderID+`","symbol":"AAPL","side":"buy","qty":"5","status":"new"}`)
	srv.Handle(http.MethodDelete, "/v2/orders/"+orderID, 204, ``)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.CancelOrderCmd{}, newClient(t, srv), orderID)

	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "Canceling: NEW buy 5 AAPL\n")
	assert.Contains(t, stdout, "✓ Order "+orderID+" canceled successfully.\n")
}

func TestCancelOrder_AllPartialFailure(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodDelete, "/v2/orders", 207, `[
		{"id":"a","status":200,"body":{"id":"a"}},
		{"id":"b","status":200,"body":{"id":"b"}},
		{"id":"c","status":200,"body":{"id":"c"}},
		{"id":"d","status":500,"body":{"code":50010000,"message":"order is not cancelable"}}
	]`)

	stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.CancelOrderCmd{}, newClient(t, srv), "--all")

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "=== Canceled 4 Order(s) ===")
	assert.Equal(t, 3, countPrefix(stdout, "✓ Canceled: "))
	assert.Equal(t, 1, countPrefix(stdout, "✗ Failed to cancel: "))
	assert.Contains(t, stdout, "✗ Failed to cancel: d - order is not cancelable\n")
}

func TestCancelOrder_AllFailed(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodDelete, "/v2/orders", 207, `[
		{"id":"a","status":500,"body":{"message":"nope"}},
		{"id":"b","status":422,"body":{}}
	]`)

	stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.CancelOrderCmd{}, newClient(t, srv), "--all")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, 2, countPrefix(stdout, "✗ Failed to cancel: "))
	assert.Contains(t, stdout, "✗ Failed to cancel: b - Unknown error\n")
	assert.Equal(t, "error: all 2 operations failed\n", stderr)
}

func TestCancelOrder_AllEmpty(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodDelete, "/v2/orders", 207, `[]`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.CancelOrderCmd{}, newClient(t, srv), "--all")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "No open orders to cancel.\n", stdout)
}

func TestClosePosition_Percentage(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/positions/AAPL", 200, `{"symbol":"AAPL","qty":"10","avg_entry_price":"150","current_price":"160","unrealized_pl":"100"}`)
	srv.Handle(http.MethodDelete, "/v2/positions/AAPL", 200, `{"id":"o-3","status":"accepted","side":"sell","qty":"5"}`)

	stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.ClosePositionCmd{}, newClient(t, srv), "aapl", "50%")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Closing 50% of position...")
	assert.Contains(t, stdout, "  Side: SELL\n")

	req, _ := srv.Find(http.MethodDelete, "/v2/positions/AAPL")
	assert.Equal(t, "50", req.Query.Get("percentage"))
}

func TestClosePosition_NotFound(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/positions/ZZZ", 404, `{"message":"position does not exist"}`)

	_, stderr, code := testutil.RunCommand(t, &alpacacmd.ClosePositionCmd{}, newClient(t, srv), "ZZZ")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "No position found for ZZZ\n", stderr)
	assert.Equal(t, 0, srv.Count(http.MethodDelete, "/v2/positions/ZZZ"))
}

func TestClosePosition_All(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/positions", 200, `[{"symbol":"AAPL","qty":"10","unrealized_pl":"5"},{"symbol":"MSFT","qty":"1","unrealized_pl":"-1"}]`)
	srv.Handle(http.MethodDelete, "/v2/positions", 207, `[
		{"symbol":"AAPL","status":200,"body":{"id":"o-1"}},
		{"symbol":"MSFT","status":403,"body":{"message":"insufficient qty"}}
	]`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.ClosePositionCmd{}, newClient(t, srv), "--all", "--cancel-orders")

	assert.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "Found 2 position(s):")
	assert.Contains(t, stdout, "✓ AAPL: Closing...\n")
	assert.Contains(t, stdout, "✗ MSFT: Failed: insufficient qty\n")

	req, _ := srv.Find(http.MethodDelete, "/v2/positions")
	assert.Equal(t, "true", req.Query.Get("cancel_orders"))
}

func TestQuote_Single(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/stocks/AAPL/quotes/latest", 200, `{"quote":{"ap":190.2,"as":2,"bp":190,"bs":3,"t":"2024-03-01T15:00:00Z"}}`)
	srv.Handle(http.MethodGet, "/v2/stocks/AAPL/trades/latest", 200, `{"trade":{"p":190.1,"s":100,"x":"V","t":"2024-03-01T15:00:01Z"}}`)

	stdout, stderr, code := testutil.RunCommand(t, &alpacacmd.QuoteCmd{}, newClient(t, srv), "aapl")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== AAPL Quote ===")
	assert.Contains(t, stdout, "  Bid: $190.00 x 3\n")
	assert.Contains(t, stdout, "  Ask: $190.20 x 2\n")
	assert.Contains(t, stdout, "  Last Trade: $190.10\n")
	assert.Contains(t, stdout, "  Exchange: V\n")
}

func TestQuote_SingleFailure(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/stocks/AAPL/quotes/latest", 200, `{"quote":{"ap":1,"bp":1}}`)
	srv.Handle(http.MethodGet, "/v2/stocks/AAPL/trades/latest", 403, `{"message":"subscription does not permit querying recent SIP data"}`)

	_, stderr, code := testutil.RunCommand(t, &alpacacmd.QuoteCmd{}, newClient(t, srv), "AAPL")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: backend error: HTTP 403: subscription does not permit querying recent SIP data\n", stderr)
}

func TestQuote_Multiple(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/stocks/snapshots", 200, `{
		"AAPL":{"latestTrade":{"p":110},"latestQuote":{"bp":109.9,"ap":110.1},"dailyBar":{"c":110},"prevDailyBar":{"c":100}}
	}`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.QuoteCmd{}, newClient(t, srv), "AAPL", "NOPE")

	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "AAPL   | Last: $110.00 | Bid: $109.90 | Ask: $110.10 | +$10.00 (+10.00%)\n")
	assert.Contains(t, stdout, "NOPE   | No data available\n")
}

func TestBars_NewestFirstWithSummary(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/stocks/AAPL/bars", 200, `{"bars":[
		{"t":"2024-03-01T05:00:00Z","o":100,"h":105,"l":99,"c":104,"v":1000},
		{"t":"2024-03-04T05:00:00Z","o":104,"h":110,"l":103,"c":110,"v":3000}
	]}`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.BarsCmd{}, newClient(t, srv), "aapl", "1Day", "2")

	require.Equal(t, exitcode.Success, code)
	assert.Less(t, strings.Index(stdout, "2024-03-04"), strings.Index(stdout, "2024-03-01"))
	assert.Contains(t, stdout, "  Period High: $110.00\n")
	assert.Contains(t, stdout, "  Period Low: $99.00\n")
	assert.Contains(t, stdout, "  Avg Volume: 2,000\n")
	assert.Contains(t, stdout, "  Period Change: +$6.00 (+5.77%)\n")

	req, _ := srv.Find(http.MethodGet, "/v2/stocks/AAPL/bars")
	assert.Equal(t, "2", req.Query.Get("limit"))
}

func TestClock(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/v2/clock", 200, `{"timestamp":"2024-03-01T10:00:00-05:00","is_open":true,"next_open":"2024-03-04T09:30:00-05:00","next_close":"2024-03-01T16:00:00-05:00"}`)
	srv.Handle(http.MethodGet, "/v2/calendar", 200, `[{"date":"2024-03-01","open":"09:30","close":"16:00"}]`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.ClockCmd{}, newClient(t, srv))

	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "  Market Status: OPEN\n")
	assert.Contains(t, stdout, "  Closes: 16:00 (in 6h 0m)\n")
	assert.Contains(t, stdout, "--- Today's Schedule (2024-03-01) ---")
	assert.Contains(t, stdout, "  Market Open: 09:30\n")

	req, _ := srv.Find(http.MethodGet, "/v2/calendar")
	assert.Equal(t, "2024-03-01", req.Query.Get("start"))
}

func TestWatchlist_Create(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/v2/watchlists", 200, `{"id":"w1","name":"tech"}`)

	stdout, _, code := testutil.RunCommand(t, &alpacacmd.WatchlistCmd{}, newClient(t, srv), "create", "tech", "aapl", "msft")

	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "✓ Created watchlist tech (w1)\n", stdout)

	req, _ := srv.Find(http.MethodPost, "/v2/watchlists")
	assert.Equal(t, []any{"AAPL", "MSFT"}, req.JSON(t)["symbols"])
}

func TestWatchlist_UnknownAction(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &alpacacmd.WatchlistCmd{}, newClient(t, srv), "rename")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unknown watchlist action: rename\n", stderr)
}
