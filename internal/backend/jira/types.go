package jira

import (
	"strings"

	"apitools/internal/adf"
)

// Issue is a Jira issue. Only the fields this tool reads are mapped.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields are the standard fields of an issue.
type IssueFields struct {
	Summary string `json:"summary"`
	// Description is a document, or a plain string on older sites.
	Description any       `json:"description"`
	Status      *Named    `json:"status"`
	IssueType   *Named    `json:"issuetype"`
	Priority    *Named    `json:"priority"`
	Assignee    *User     `json:"assignee"`
	Reporter    *User     `json:"reporter"`
	Project     *Project  `json:"project"`
	Labels      []string  `json:"labels"`
	Created     string    `json:"created"`
	Updated     string    `json:"updated"`
	Comment     *Comments `json:"comment"`
}

// Named is any {id, name} reference: status, issue type, priority.
type Named struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NameOr returns n.Name, or def when n is nil.
func (n *Named) NameOr(def string) string {
	if n == nil || n.Name == "" {
		return def
	}
	return n.Name
}

// User is an Atlassian account.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
	TimeZone     string `json:"timeZone"`
	AccountType  string `json:"accountType"`
}

// DisplayNameOr returns the display name, or def when u is nil.
func (u *User) DisplayNameOr(def string) string {
	if u == nil || u.DisplayName == "" {
		return def
	}
	return u.DisplayName
}

// Project is a project reference.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Comments is the comment page embedded in an issue.
type Comments struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

// Comment is one issue comment.
type Comment struct {
	ID      string `json:"id"`
	Author  *User  `json:"author"`
	Body    any    `json:"body"`
	Created string `json:"created"`
}

// Text returns the comment body as one line of text.
func (c Comment) Text() string {
	return strings.TrimSpace(adf.PlainText(c.Body, " "))
}

// DescriptionText returns the description with blocks joined by newlines.
func (i Issue) DescriptionText() string {
	return adf.PlainText(i.Fields.Description, "\n")
}

// SearchResult is one page of a JQL search.
type SearchResult struct {
	Issues        []Issue `json:"issues"`
	Total         int     `json:"total"`
	IsLast        bool    `json:"isLast"`
	NextPageToken string  `json:"nextPageToken"`
}

// Transition is a workflow transition available on an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   *Named `json:"to"`
}

// NewIssue describes an issue to create.
type NewIssue struct {
	Project     string
	Summary     string
	Description string
	Type        string
	Priority    string
}
