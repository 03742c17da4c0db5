package alpaca_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitools/internal/backend/alpaca"
)

func TestBuildOrder_Trail(t *testing.T) {
	tests := []struct {
		name        string
		trail       string
		wantPrice   string
		wantPercent string
		wantErr     error
	}{
		{name: "percent", trail: "5%", wantPercent: "5"},
		{name: "bare number is a percent", trail: "1.5", wantPercent: "1.5"},
		{name: "dollar amount", trail: "$2.50", wantPrice: "2.50"},
		{name: "missing", trail: "", wantErr: alpaca.ErrTrailRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := alpaca.BuildOrder(alpaca.OrderParams{
				Side: "sell", Symbol: "aapl", Qty: "10", Type: "trailing_stop", TIF: "gtc", Trail: tt.trail,
			})
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, req)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, req.TrailPrice)
			assert.Equal(t, tt.wantPercent, req.TrailPercent)
			assert.Equal(t, "AAPL", req.Symbol)
			assert.Equal(t, "gtc", req.TimeInForce)
		})
	}
}

func TestBuildOrder_Defaults(t *testing.T) {
	req, err := alpaca.BuildOrder(alpaca.OrderParams{Side: "BUY", Symbol: "msft", Qty: "2"})
	require.NoError(t, err)

	assert.Equal(t, "buy", req.Side)
	assert.Equal(t, "market", req.Type)
	assert.Equal(t, "day", req.TimeInForce)
	assert.Equal(t, "2", req.Qty)
	assert.Empty(t, req.Notional)
	_, err = uuid.Parse(req.ClientOrderID)
	assert.NoError(t, err)
}

func TestBuildOrder_Prices(t *testing.T) {
	req, err := alpaca.BuildOrder(alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "stop_limit", Prices: []string{"10", "10.5"}})
	require.NoError(t, err)
	assert.Equal(t, "10", req.StopPrice)
	assert.Equal(t, "10.5", req.LimitPrice)

	req, err = alpaca.BuildOrder(alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "limit", Prices: []string{"99.1"}})
	require.NoError(t, err)
	assert.Equal(t, "99.1", req.LimitPrice)
	assert.Empty(t, req.StopPrice)
}

func TestBuildOrder_NotionalAndClientID(t *testing.T) {
	req, err := alpaca.BuildOrder(alpaca.OrderParams{
		Side: "buy", Symbol: "SPY", Qty: "250", Notional: true, Extended: true, ClientOrderID: "mine-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "250", req.Notional)
	assert.Empty(t, req.Qty)
	assert.True(t, req.ExtendedHours)
	assert.Equal(t, "mine-1", req.ClientOrderID)
}

func TestBuildOrder_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params alpaca.OrderParams
		want   string
	}{
		{name: "bad side", params: alpaca.OrderParams{Side: "hold", Symbol: "X", Qty: "1"}, want: "side"},
		{name: "bad type", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "iceberg"}, want: "unknown order type"},
		{name: "bad tif", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", TIF: "forever"}, want: "time in force"},
		{name: "non-numeric qty", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "ten"}, want: "must be a number"},
		{name: "zero qty", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "0"}, want: "greater than zero"},
		{name: "limit without price", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "limit"}, want: "limit orders require a limit price"},
		{name: "stop without price", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "stop"}, want: "stop orders require a stop price"},
		{name: "stop_limit with one price", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "stop_limit", Prices: []string{"5"}}, want: "stop price and limit price"},
		{name: "negative price", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "limit", Prices: []string{"-3"}}, want: "price must be greater than zero"},
		{name: "bad trail", params: alpaca.OrderParams{Side: "buy", Symbol: "X", Qty: "1", Type: "trailing_stop", Trail: "$abc"}, want: "trail must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alpaca.BuildOrder(tt.params)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
