package rest

import (
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// Credentials attaches authentication to an outgoing request.
type Credentials interface {
	Attach(req *http.Request) error
}

// HeaderPair sends a key id and a secret in two custom headers.
type HeaderPair struct {
	KeyHeader    string
	Key          string
	SecretHeader string
	Secret       string
}

func (h HeaderPair) Attach(req *http.Request) error {
	req.Header.Set(h.KeyHeader, h.Key)
	req.Header.Set(h.SecretHeader, h.Secret)
	return nil
}

// BasicAuth sends "Authorization: Basic base64(username:password)".
type BasicAuth struct {
	Username string
	Password string
}

func (b BasicAuth) Attach(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// QueryParams adds fixed parameters to the query string of every request.
type QueryParams url.Values

func (q QueryParams) Attach(req *http.Request) error {
	query := req.URL.Query()
	for key, values := range q {
		query.Del(key)
		for _, v := range values {
			query.Add(key, v)
		}
	}
	req.URL.RawQuery = query.Encode()
	return nil
}

// BearerToken sends an OAuth access token taken from Source.
type BearerToken struct {
	Source oauth2.TokenSource
}

// NewBearerToken returns BearerToken credentials for a fixed access token.
func NewBearerToken(token string) BearerToken {
	return BearerToken{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
	}
}

func (b BearerToken) Attach(req *http.Request) error {
	tok, err := b.Source.Token()
	if err != nil {
		return fmt.Errorf("getting access token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}
