package config

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var hostPattern = regexp.MustCompile(`^[A-Za-z0-9.-]+(:[0-9]+)?$`)

// Alpaca trading and market data hosts.
const (
	AlpacaPaperHost = "paper-api.alpaca.markets"
	AlpacaLiveHost  = "api.alpaca.markets"
	AlpacaDataHost  = "data.alpaca.markets"
)

// Alpaca holds brokerage API settings.
type Alpaca struct {
	APIKey     string
	APISecret  string
	OAuthToken string
	Paper      bool

	TradingHost string
	DataHost    string
}

// LoadAlpaca reads ALPACA_* settings. Key and secret are optional when an
// OAuth token is provided.
func (c *Config) LoadAlpaca(ctx context.Context) (*Alpaca, error) {
	var a Alpaca
	var paper string
	needKeys := c.Env.GetString("ALPACA_OAUTH_TOKEN") == ""
	err := c.load(ctx, "Alpaca", []setting{
		{key: "ALPACA_API_KEY", example: "your-api-key-id", required: needKeys, secret: true, dest: &a.APIKey},
		{key: "ALPACA_API_SECRET", example: "your-api-secret-key", required: needKeys, secret: true, dest: &a.APISecret},
		{key: "ALPACA_PAPER", example: "true", dest: &paper},
		{key: "ALPACA_OAUTH_TOKEN", example: "op://Private/Alpaca/oauth-token", secret: true, dest: &a.OAuthToken},
		{key: "ALPACA_TRADING_HOST", example: AlpacaPaperHost, dest: &a.TradingHost},
		{key: "ALPACA_DATA_HOST", example: AlpacaDataHost, dest: &a.DataHost},
	})
	if err != nil {
		return nil, err
	}

	a.Paper = paper != "false"
	if a.TradingHost == "" {
		a.TradingHost = AlpacaLiveHost
		if a.Paper {
			a.TradingHost = AlpacaPaperHost
		}
	}
	if a.DataHost == "" {
		a.DataHost = AlpacaDataHost
	}
	a.TradingHost = normalizeHost(a.TradingHost)
	a.DataHost = normalizeHost(a.DataHost)

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks host formats.
func (a Alpaca) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.TradingHost, validation.Required, validation.Match(hostPattern)),
		validation.Field(&a.DataHost, validation.Required, validation.Match(hostPattern)),
	)
}

// Atlassian holds settings for Jira or Confluence Cloud.
type Atlassian struct {
	Host     string
	Email    string
	APIToken string
}

// Validate checks the host format.
func (a Atlassian) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Host, validation.Required, validation.Match(hostPattern)),
	)
}

// LoadJira reads JIRA_HOST, JIRA_EMAIL and JIRA_API_TOKEN.
func (c *Config) LoadJira(ctx context.Context) (*Atlassian, error) {
	return c.loadAtlassian(ctx, "Jira", "JIRA")
}

// LoadConfluence reads CONFLUENCE_HOST, CONFLUENCE_EMAIL and
// CONFLUENCE_API_TOKEN.
func (c *Config) LoadConfluence(ctx context.Context) (*Atlassian, error) {
	return c.loadAtlassian(ctx, "Confluence", "CONFLUENCE")
}

func (c *Config) loadAtlassian(ctx context.Context, service, prefix string) (*Atlassian, error) {
	var a Atlassian
	err := c.load(ctx, service, []setting{
		{key: prefix + "_HOST", example: "your-domain.atlassian.net", required: true, dest: &a.Host},
		{key: prefix + "_EMAIL", example: "your-email@example.com", required: true, secret: true, dest: &a.Email},
		{key: prefix + "_API_TOKEN", example: "your-api-token", required: true, secret: true, dest: &a.APIToken},
	})
	if err != nil {
		return nil, err
	}
	a.Host = normalizeHost(a.Host)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// TrelloHost is the Trello API host.
const TrelloHost = "api.trello.com"

// Trello holds board API settings.
type Trello struct {
	APIKey  string
	Token   string
	BoardID string
	Host    string
}

// LoadTrello reads TRELLO_API_KEY, TRELLO_TOKEN and TRELLO_BOARD_ID.
func (c *Config) LoadTrello(ctx context.Context) (*Trello, error) {
	t := Trello{Host: TrelloHost}
	err := c.load(ctx, "Trello", []setting{
		{key: "TRELLO_API_KEY", example: "your-api-key", required: true, secret: true, dest: &t.APIKey},
		{key: "TRELLO_TOKEN", example: "your-token", required: true, secret: true, dest: &t.Token},
		{key: "TRELLO_BOARD_ID", example: "your-board-id", required: true, dest: &t.BoardID},
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}
