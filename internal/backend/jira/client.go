// Package jira is a client for the Jira Cloud REST API v3.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"apitools/internal/adf"
	"apitools/internal/config"
	"apitools/internal/rest"
)

// BasePath is the REST API v3 prefix.
const BasePath = "/rest/api/3"

// Defaults applied by CreateIssue.
const (
	DefaultIssueType = "Task"
	DefaultPriority  = "Medium"
)

// UpdatableFields are the fields FieldUpdate accepts.
var UpdatableFields = []string{"summary", "description", "priority", "assignee"}

// Client talks to one Jira site.
type Client struct {
	host string
	api  *rest.Client
}

// New creates a client from resolved settings.
func New(cfg config.Atlassian, opts ...rest.Option) *Client {
	creds := rest.BasicAuth{Username: cfg.Email, Password: cfg.APIToken}
	opts = append([]rest.Option{rest.WithMessage(errorMessage)}, opts...)
	return &Client{host: cfg.Host, api: rest.New(cfg.Host, BasePath, creds, opts...)}
}

// NewFromConfig loads JIRA_* settings and creates a client.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	settings, err := cfg.LoadJira(ctx)
	if err != nil {
		return nil, err
	}
	return New(*settings, rest.WithLogger(cfg.Logger())), nil
}

// errorMessage reads Jira's {"errorMessages": [...], "errors": {...}} shape.
func errorMessage(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	var parts []string
	if msgs, ok := obj["errorMessages"].([]any); ok {
		for _, m := range msgs {
			if s, ok := m.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if fields, ok := obj["errors"].(map[string]any); ok && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, fields[k]))
		}
		return strings.Join(parts, ", ")
	}
	return rest.Fields("message")(body)
}

// Host returns the site host.
func (c *Client) Host() string {
	return c.host
}

// IssueURL returns the browser URL of an issue.
func (c *Client) IssueURL(key string) string {
	return "https://" + c.host + "/browse/" + url.PathEscape(key)
}

// Issue fetches an issue with all fields.
func (c *Client) Issue(ctx context.Context, key string) (*Issue, error) {
	var issue Issue
	if err := c.api.Into(ctx, http.MethodGet, rest.Path("/issue/%s", key), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates an issue. The description is sent as a document.
func (c *Client) CreateIssue(ctx context.Context, in NewIssue) (*Issue, error) {
	issueType, priority := in.Type, in.Priority
	if issueType == "" {
		issueType = DefaultIssueType
	}
	if priority == "" {
		priority = DefaultPriority
	}
	fields := map[string]any{
		"project":   map[string]string{"key": in.Project},
		"summary":   in.Summary,
		"issuetype": map[string]string{"name": issueType},
		"priority":  map[string]string{"name": priority},
	}
	if in.Description != "" {
		fields["description"] = adf.FromText(in.Description)
	}
	var issue Issue
	if err := c.api.Into(ctx, http.MethodPost, "/issue", map[string]any{"fields": fields}, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue sets raw fields on an issue.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	_, err := c.api.Put(ctx, rest.Path("/issue/%s", key), map[string]any{"fields": fields})
	return err
}

// FieldUpdate maps a user-facing field name and value to the API payload.
func FieldUpdate(field, value string) (map[string]any, error) {
	switch strings.ToLower(field) {
	case "summary":
		return map[string]any{"summary": value}, nil
	case "description":
		return map[string]any{"description": adf.FromText(value)}, nil
	case "priority":
		return map[string]any{"priority": map[string]string{"name": value}}, nil
	case "assignee":
		return map[string]any{"assignee": map[string]string{"accountId": value}}, nil
	}
	return nil, fmt.Errorf("unknown field %q: supported fields are %s", field, strings.Join(UpdatableFields, ", "))
}

// Search runs a JQL query. fields limits the returned fields; nil means all.
func (c *Client) Search(ctx context.Context, jql string, maxResults int, fields []string) (*SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 50
	}
	f := "*all"
	if len(fields) > 0 {
		f = strings.Join(fields, ",")
	}
	path := rest.WithQuery("/search/jql", url.Values{
		"jql":        {jql},
		"maxResults": {strconv.Itoa(maxResults)},
		"fields":     {f},
	})
	var res SearchResult
	if err := c.api.Into(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MyIssuesJQL builds the query for issues assigned to the caller. A status
// of "all" (any case) drops the status filter.
func MyIssuesJQL(status string) string {
	jql := "assignee = currentUser()"
	if !strings.EqualFold(status, "all") {
		jql += fmt.Sprintf(" AND status = %q", status)
	}
	return jql + " ORDER BY updated DESC"
}

// AddComment posts a plain-text comment.
func (c *Client) AddComment(ctx context.Context, key, text string) (*Comment, error) {
	var comment Comment
	body := map[string]any{"body": adf.FromText(text)}
	if err := c.api.Into(ctx, http.MethodPost, rest.Path("/issue/%s/comment", key), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Transitions lists the transitions available on an issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]Transition, error) {
	var resp struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.api.Into(ctx, http.MethodGet, rest.Path("/issue/%s/transitions", key), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// Transition moves an issue through the transition with the given id.
func (c *Client) Transition(ctx context.Context, key, transitionID string) error {
	body := map[string]any{"transition": map[string]string{"id": transitionID}}
	_, err := c.api.Post(ctx, rest.Path("/issue/%s/transitions", key), body)
	return err
}

// FindTransition returns the transition whose name equals name, ignoring
// case.
func FindTransition(transitions []Transition, name string) (Transition, bool) {
	name = strings.TrimSpace(name)
	for _, t := range transitions {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Transition{}, false
}

// Myself returns the authenticated user.
func (c *Client) Myself(ctx context.Context) (*User, error) {
	var u User
	if err := c.api.Into(ctx, http.MethodGet, "/myself", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
