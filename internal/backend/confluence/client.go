// Package confluence is a client for the Confluence Cloud REST API.
package confluence

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"apitools/internal/adf"
	"apitools/internal/config"
	"apitools/internal/rest"
)

// Base paths of the two API generations. Labels can only be written
// through v1.
const (
	BasePathV2 = "/wiki/api/v2"
	BasePathV1 = "/wiki/rest/api"
)

// DefaultUpdateMessage is the version message used when none is given.
const DefaultUpdateMessage = "Updated via API"

// Client talks to one Confluence site.
type Client struct {
	host string
	v2   *rest.Client
	v1   *rest.Client
}

// New creates a client from resolved settings.
func New(cfg config.Atlassian, opts ...rest.Option) *Client {
	creds := rest.BasicAuth{Username: cfg.Email, Password: cfg.APIToken}
	opts = append([]rest.Option{rest.WithMessage(errorMessage)}, opts...)
	return &Client{
		host: cfg.Host,
		v2:   rest.New(cfg.Host, BasePathV2, creds, opts...),
		v1:   rest.New(cfg.Host, BasePathV1, creds, opts...),
	}
}

// NewFromConfig loads CONFLUENCE_* settings and creates a client.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	settings, err := cfg.LoadConfluence(ctx)
	if err != nil {
		return nil, err
	}
	return New(*settings, rest.WithLogger(cfg.Logger())), nil
}

// errorMessage reads "message", or the first entry of a v2 "errors" array.
func errorMessage(body any) string {
	if msg := rest.Fields("message")(body); msg != "" {
		return msg
	}
	obj, _ := body.(map[string]any)
	errs, _ := obj["errors"].([]any)
	if len(errs) == 0 {
		return ""
	}
	first, _ := errs[0].(map[string]any)
	return rest.Fields("title", "detail", "message")(first)
}

// Host returns the site host.
func (c *Client) Host() string {
	return c.host
}

// PageURL returns the browser URL of a page.
func (c *Client) PageURL(spaceID, pageID string) string {
	return "https://" + c.host + "/wiki/spaces/" + url.PathEscape(spaceID) + "/pages/" + url.PathEscape(pageID)
}

// SpaceURL returns the browser URL of a space.
func (c *Client) SpaceURL(key string) string {
	return "https://" + c.host + "/wiki/spaces/" + url.PathEscape(key)
}

// Page fetches a page with its body in document format.
func (c *Client) Page(ctx context.Context, id string) (*Page, error) {
	path := rest.WithQuery(rest.Path("/pages/%s", id), url.Values{"body-format": {"atlas_doc_format"}})
	var p Page
	if err := c.v2.Into(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Content returns the plain text of a page body, blocks joined by sep.
func (p *Page) Content(sep string) string {
	if p.Body.AtlasDocFormat == nil {
		return ""
	}
	return adf.PlainText(p.Body.AtlasDocFormat.Value, sep)
}

// CreatePage creates a page from plain text.
func (c *Client) CreatePage(ctx context.Context, in NewPage) (*Page, error) {
	body := map[string]any{
		"spaceId": in.SpaceID,
		"status":  "current",
		"title":   in.Title,
		"body":    docBody(in.Content),
	}
	if in.ParentID != "" {
		body["parentId"] = in.ParentID
	}
	var p Page
	if err := c.v2.Into(ctx, http.MethodPost, "/pages", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePage replaces the title and body of a page.
func (c *Client) UpdatePage(ctx context.Context, id string, in PageUpdate) (*Page, error) {
	msg := in.Message
	if msg == "" {
		msg = DefaultUpdateMessage
	}
	body := map[string]any{
		"id":      id,
		"status":  "current",
		"title":   in.Title,
		"body":    docBody(in.Content),
		"version": map[string]any{"number": in.Version, "message": msg},
	}
	var p Page
	if err := c.v2.Into(ctx, http.MethodPut, rest.Path("/pages/%s", id), body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// docBody wraps text as an atlas_doc_format body. The document travels as a
// JSON string, not a nested object.
func docBody(text string) map[string]string {
	return map[string]string{
		"representation": "atlas_doc_format",
		"value":          adf.FromText(text).String(),
	}
}

// DeletePage moves a page to the trash.
func (c *Client) DeletePage(ctx context.Context, id string) error {
	_, err := c.v2.Delete(ctx, rest.Path("/pages/%s", id))
	return err
}

// SearchPages lists pages matching q.
func (c *Client) SearchPages(ctx context.Context, q PageQuery) ([]Page, error) {
	path := rest.WithQuery("/pages", url.Values{
		"space-id": {q.SpaceID},
		"title":    {q.Title},
		"limit":    {itoa(q.Limit)},
	})
	return c.pages(ctx, path)
}

// Children lists the direct child pages of a page.
func (c *Client) Children(ctx context.Context, id string, limit int) ([]Page, error) {
	path := rest.WithQuery(rest.Path("/pages/%s/children", id), url.Values{"limit": {itoa(limit)}})
	return c.pages(ctx, path)
}

// BlogPosts lists blog posts, optionally in one space.
func (c *Client) BlogPosts(ctx context.Context, spaceID string, limit int) ([]Page, error) {
	path := rest.WithQuery("/blogposts", url.Values{"space-id": {spaceID}, "limit": {itoa(limit)}})
	return c.pages(ctx, path)
}

func (c *Client) pages(ctx context.Context, path string) ([]Page, error) {
	var resp struct {
		Results []Page `json:"results"`
	}
	if err := c.v2.Into(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Spaces lists spaces.
func (c *Client) Spaces(ctx context.Context, limit int) ([]Space, error) {
	var resp struct {
		Results []Space `json:"results"`
	}
	path := rest.WithQuery("/spaces", url.Values{"limit": {itoa(limit)}})
	if err := c.v2.Into(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Space fetches one space by id.
func (c *Client) Space(ctx context.Context, id string) (*Space, error) {
	var s Space
	if err := c.v2.Into(ctx, http.MethodGet, rest.Path("/spaces/%s", id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AddLabels attaches global labels to a page and returns the page's labels.
func (c *Client) AddLabels(ctx context.Context, pageID string, names []string) ([]Label, error) {
	labels := make([]map[string]string, len(names))
	for i, name := range names {
		labels[i] = map[string]string{"prefix": "global", "name": name}
	}
	var resp struct {
		Results []Label `json:"results"`
	}
	if err := c.v1.Into(ctx, http.MethodPost, rest.Path("/content/%s/label", pageID), labels, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
