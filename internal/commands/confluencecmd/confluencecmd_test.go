package confluencecmd_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitools/internal/adf"
	"apitools/internal/backend/confluence"
	"apitools/internal/commands/confluencecmd"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/testutil"
)

func newClient(t *testing.T, srv *testutil.Server) *confluence.Client {
	t.Helper()
	return confluence.New(config.Atlassian{Host: srv.Host(), Email: "me@example.com", APIToken: "tok"}, srv.Options()...)
}

func pageJSON(content string) map[string]any {
	return map[string]any{
		"id": "123", "title": "Runbook", "spaceId": "42", "status": "current",
		"createdAt": "2024-03-01T10:00:00.000Z",
		"version":   map[string]any{"number": 2},
		"body": map[string]any{"atlas_doc_format": map[string]any{
			"representation": "atlas_doc_format",
			"value":          adf.FromText(content).String(),
		}},
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{
		"get-page", "search-pages", "create-page", "update-page", "delete-page",
		"list-spaces", "get-space", "children", "add-labels", "blogposts",
		"login", "logout", "help", "version",
	} {
		_, ok := confluencecmd.Registry.Find(name)
		assert.True(t, ok, name)
	}
}

func TestGetPage(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages/123", 200, pageJSON("First paragraph\n\nSecond paragraph"))
	svc := newClient(t, srv)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.GetPageCmd{}, svc, "123")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Runbook ===\n")
	assert.Contains(t, stdout, "  Version: 2\n")
	assert.Contains(t, stdout, "  Created: 2024-03-01\n")
	assert.Contains(t, stdout, "  URL: https://"+srv.Host()+"/wiki/spaces/42/pages/123\n")
	assert.Contains(t, stdout, "--- Content Preview ---\nFirst paragraph\nSecond paragraph\n")
}

func TestGetPage_PreviewTruncated(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages/123", 200, pageJSON(strings.Repeat("a", 400)))

	stdout, _, code := testutil.RunCommand(t, &confluencecmd.GetPageCmd{}, newClient(t, srv), "123")

	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, strings.Repeat("a", 300)+"...\n")
	assert.NotContains(t, stdout, strings.Repeat("a", 301))
}

func TestGetPage_Open(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages/123", 200, pageJSON("x"))

	var opened string
	cmd := &confluencecmd.GetPageCmd{Browser: func(url string) error {
		opened = url
		return nil
	}}
	_, stderr, code := testutil.RunCommand(t, cmd, newClient(t, srv), "--open", "123")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "https://"+srv.Host()+"/wiki/spaces/42/pages/123", opened)
}

func TestGetPage_OpenFails(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages/123", 200, pageJSON("x"))

	cmd := &confluencecmd.GetPageCmd{Browser: func(string) error { return errors.New("no display") }}
	_, stderr, code := testutil.RunCommand(t, cmd, newClient(t, srv), "--open", "123")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "no display")
}

func TestGetPage_NotFound(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages/9", 404, `{"errors":[{"status":404,"title":"Not Found"}]}`)

	_, stderr, code := testutil.RunCommand(t, &confluencecmd.GetPageCmd{}, newClient(t, srv), "9")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: page 9 not found\n", stderr)
}

func TestSearchPages_RequiresFilter(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &confluencecmd.SearchPagesCmd{}, newClient(t, srv), "--limit", "5")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "usage:")
	assert.Empty(t, srv.Requests())
}

func TestSearchPages(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages", 200, `{"results":[
		{"id":"1","title":"Getting Started","spaceId":"42","status":"current"},
		{"id":"2","title":"","spaceId":"42","status":"draft"}
	]}`)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.SearchPagesCmd{}, newClient(t, srv), "--space-id", "42")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Found 2 pages ===\n")
	assert.Contains(t, stdout, "Getting Started (ID: 1)\n")
	assert.Contains(t, stdout, "(untitled) (ID: 2)\n")

	req, _ := srv.Find(http.MethodGet, "/wiki/api/v2/pages")
	assert.Equal(t, "42", req.Query.Get("space-id"))
}

func TestSearchPages_Empty(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages", 200, `{"results":[]}`)

	stdout, _, code := testutil.RunCommand(t, &confluencecmd.SearchPagesCmd{}, newClient(t, srv), "--title", "Nope")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "No pages found.\n", stdout)
}

func TestCreatePage(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/wiki/api/v2/pages", 200, `{"id":"77","title":"Notes","spaceId":"42"}`)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.CreatePageCmd{}, newClient(t, srv), "42", "Notes", "Hello", "5")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "✓ Created page: Notes\n")
	assert.Contains(t, stdout, "  ID: 77\n")
	assert.Contains(t, stdout, "/wiki/spaces/42/pages/77\n")

	req, _ := srv.Find(http.MethodPost, "/wiki/api/v2/pages")
	assert.Equal(t, "5", req.JSON(t)["parentId"])
}

func TestCreatePage_Usage(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &confluencecmd.CreatePageCmd{}, newClient(t, srv), "42", "Notes")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "confluence create-page")
}

func TestUpdatePage_SendsVersionAsGiven(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPut, "/wiki/api/v2/pages/123", 200, `{"id":"123","title":"T2","spaceId":"42","version":{"number":3}}`)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.UpdatePageCmd{}, newClient(t, srv), "123", "T2", "body", "3")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "✓ Updated page: T2\n")
	assert.Contains(t, stdout, "  Version: 3\n")

	req, _ := srv.Find(http.MethodPut, "/wiki/api/v2/pages/123")
	version := req.JSON(t)["version"].(map[string]any)
	assert.Equal(t, float64(3), version["number"])
}

func TestUpdatePage_InvalidVersion(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &confluencecmd.UpdatePageCmd{}, newClient(t, srv), "123", "T", "body", "next")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "version must be a positive integer")
	assert.Empty(t, srv.Requests())
}

func TestUpdatePage_Conflict(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPut, "/wiki/api/v2/pages/123", 409, `{"errors":[{"status":409,"title":"Version must be incremented"}]}`)

	_, stderr, code := testutil.RunCommand(t, &confluencecmd.UpdatePageCmd{}, newClient(t, srv), "123", "T", "body", "2")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "version conflict")
}

func TestDeletePage(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodDelete, "/wiki/api/v2/pages/123", 204, "")

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.DeletePageCmd{}, newClient(t, srv), "123")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "✓ Deleted page: 123\n", stdout)
}

func TestDeletePage_BackendError(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodDelete, "/wiki/api/v2/pages/123", 403, `{"message":"Not permitted"}`)

	_, stderr, code := testutil.RunCommand(t, &confluencecmd.DeletePageCmd{}, newClient(t, srv), "123")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Contains(t, stderr, "HTTP 403: Not permitted")
}

func TestListSpaces(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/spaces", 200, `{"results":[
		{"id":"42","key":"ENG","name":"Engineering","type":"global","status":"current",
		 "description":{"plain":{"representation":"plain","value":"All things\nengineering"}}}
	]}`)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.ListSpacesCmd{}, newClient(t, srv), "10")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Engineering (ENG)\n")
	assert.Contains(t, stdout, "  Description: All things engineering\n")
	assert.Contains(t, stdout, "  URL: https://"+srv.Host()+"/wiki/spaces/ENG\n")

	req, _ := srv.Find(http.MethodGet, "/wiki/api/v2/spaces")
	assert.Equal(t, "10", req.Query.Get("limit"))
}

func TestListSpaces_DefaultLimitAndInvalid(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/spaces", 200, `{"results":[]}`)
	svc := newClient(t, srv)

	stdout, _, code := testutil.RunCommand(t, &confluencecmd.ListSpacesCmd{}, svc)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "No spaces found.\n", stdout)
	req, _ := srv.Find(http.MethodGet, "/wiki/api/v2/spaces")
	assert.Equal(t, "25", req.Query.Get("limit"))

	_, _, code = testutil.RunCommand(t, &confluencecmd.ListSpacesCmd{}, svc, "zero")
	assert.Equal(t, exitcode.UserError, code)
}

func TestChildren(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/pages/123/children", 200, `{"results":[{"id":"124","title":"Child","spaceId":"42"}]}`)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.ChildrenCmd{}, newClient(t, srv), "123")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Found 1 child pages ===\n")
	assert.Contains(t, stdout, "Child (ID: 124)\n")
}

func TestAddLabels(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/wiki/rest/api/content/123/label", 200, `{"results":[
		{"prefix":"global","name":"ops"},{"prefix":"global","name":"oncall"}
	]}`)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.AddLabelsCmd{}, newClient(t, srv), "123", "ops", "oncall")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "  Labels: ops, oncall\n")
}

func TestBlogPosts(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/wiki/api/v2/blogposts", 200, `{"results":[
		{"id":"5","title":"Release notes","spaceId":"42","createdAt":"2024-05-02T08:00:00.000Z"}
	]}`)

	stdout, stderr, code := testutil.RunCommand(t, &confluencecmd.BlogPostsCmd{}, newClient(t, srv), "--space-id", "42")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "2024-05-02  Release notes (ID: 5)\n")

	req, _ := srv.Find(http.MethodGet, "/wiki/api/v2/blogposts")
	assert.Equal(t, "42", req.Query.Get("space-id"))
	assert.Equal(t, "25", req.Query.Get("limit"))
}
