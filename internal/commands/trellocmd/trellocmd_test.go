package trellocmd_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitools/internal/backend/trello"
	"apitools/internal/commands/trellocmd"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/testutil"
)

func newClient(t *testing.T, srv *testutil.Server) *trello.Client {
	t.Helper()
	return trello.New(config.Trello{APIKey: "key", Token: "tok", BoardID: "b1", Host: srv.Host()}, srv.Options()...)
}

const (
	todoID = "5f0000000000000000000001"
	doneID = "5f0000000000000000000002"

	listsJSON = `[
		{"id":"5f0000000000000000000001","name":"To Do","pos":16384,"closed":false},
		{"id":"5f0000000000000000000002","name":"Done","pos":32768,"closed":false}
	]`

	boardLabelsJSON = `[
		{"id":"l1","name":"Bug","color":"red"},
		{"id":"l2","name":"Feature","color":"green"},
		{"id":"l3","name":"","color":"blue"}
	]`
)

func TestRegistry(t *testing.T) {
	for _, name := range []string{
		"lists", "card", "create-card", "update-card", "move-card", "archive-card", "delete-card",
		"add-list", "archive-list", "comments", "comment", "edit-comment", "delete-comment",
		"checklist", "labels", "search", "my-cards", "activity", "board", "attachments",
		"login", "logout", "help", "version",
	} {
		_, ok := trellocmd.Registry.Find(name)
		assert.True(t, ok, name)
	}
}

func TestLists(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/lists", 200, listsJSON)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.ListsCmd{}, newClient(t, srv))

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Board Lists ===")
	assert.Contains(t, stdout, "\nTo Do\n  ID: "+todoID+"\n  Position: 16384\n  Closed: false\n")
}

func TestListsWithCards(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/lists", 200, listsJSON)
	srv.Handle(http.MethodGet, "/1/boards/b1/cards", 200, `[
		{"id":"c1","name":"Write docs","idList":"5f0000000000000000000001","due":"2024-06-01T12:00:00.000Z"},
		{"id":"c2","name":"Ship","idList":"5f0000000000000000000001"}
	]`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.ListsCmd{}, newClient(t, srv), "--with-cards")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Board Overview ===")
	assert.Contains(t, stdout, "To Do (2 cards)\n")
	assert.Contains(t, stdout, "    - Write docs [Due: 2024-06-01]\n")
	assert.Contains(t, stdout, "    - Ship\n")
	assert.Contains(t, stdout, "Done (0 cards)\n")
}

func TestCard(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/c1", 200, `{
		"id":"c1","name":"Write docs","shortUrl":"https://trello.com/c/abc","closed":false,
		"labels":[{"name":"Docs","color":"blue"},{"name":"","color":"red"}],
		"members":[{"fullName":"Ann Lee"},{"username":"bob"}],
		"checklists":[{"id":"cl1","name":"Steps","checkItems":[
			{"id":"i1","name":"Outline","state":"complete"},
			{"id":"i2","name":"Draft","state":"incomplete"}
		]}]
	}`)
	var opened string
	cmd := &trellocmd.GetCardCmd{Browser: func(url string) error { opened = url; return nil }}

	stdout, stderr, code := testutil.RunCommand(t, cmd, newClient(t, srv), "--open", "c1")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Card: Write docs ===")
	assert.Contains(t, stdout, "  Description: (none)\n")
	assert.Contains(t, stdout, "  Due: (none)\n")
	assert.Contains(t, stdout, "  Labels: Docs, red\n")
	assert.Contains(t, stdout, "  Members: Ann Lee, bob\n")
	assert.Contains(t, stdout, "    - Steps: 1/2 complete\n      [x] Outline\n      [ ] Draft\n")
	assert.Equal(t, "https://trello.com/c/abc", opened)

	req, _ := srv.Find(http.MethodGet, "/1/cards/c1")
	assert.Equal(t, "all", req.Query.Get("checklists"))
}

func TestCardNotFound(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/nope", 400, `invalid id`)

	_, stderr, code := testutil.RunCommand(t, &trellocmd.GetCardCmd{}, newClient(t, srv), "nope")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: card nope not found\n", stderr)
}

func TestCreateCard(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/lists", 200, listsJSON)
	srv.Handle(http.MethodPost, "/1/cards", 200, `{"id":"c9","name":"Fix login","shortUrl":"https://trello.com/c/xyz","due":"2024-12-31T00:00:00.000Z"}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.CreateCardCmd{}, newClient(t, srv),
		"--due", "2024-12-31", "--pos", "top", "to do", "Fix login", "Special chars fail")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Created card: Fix login\n")
	assert.Contains(t, stdout, "  URL: https://trello.com/c/xyz\n")
	assert.Contains(t, stdout, "  Due: 2024-12-31")

	req, _ := srv.Find(http.MethodPost, "/1/cards")
	assert.Equal(t, todoID, req.Query.Get("idList"))
	assert.Equal(t, "Fix login", req.Query.Get("name"))
	assert.Equal(t, "Special chars fail", req.Query.Get("desc"))
	assert.Equal(t, "2024-12-31", req.Query.Get("due"))
	assert.Equal(t, "top", req.Query.Get("pos"))
}

func TestCreateCardByIDQuiet(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/1/cards", 200, `{"id":"c9","name":"Fix login"}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.CreateCardCmd{}, newClient(t, srv), "--quiet", doneID, "Fix login")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "c9\n", stdout)
	assert.Zero(t, srv.Count(http.MethodGet, "/1/boards/b1/lists"))
}

func TestCreateCardUnknownList(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/lists", 200, listsJSON)

	_, stderr, code := testutil.RunCommand(t, &trellocmd.CreateCardCmd{}, newClient(t, srv), "Backlog", "Fix login")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, `list "Backlog" not found. Available lists: To Do, Done`)
	assert.Zero(t, srv.Count(http.MethodPost, "/1/cards"))
}

func TestUpdateCard(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPut, "/1/cards/c1", 200, `{"id":"c1","name":"New name","shortUrl":"https://trello.com/c/abc"}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.UpdateCardCmd{}, newClient(t, srv), "c1", "name", "New", "name")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Updated card: New name\n  name: New name\n")
	req, _ := srv.Find(http.MethodPut, "/1/cards/c1")
	assert.Equal(t, "New name", req.Query.Get("name"))
}

func TestUpdateCardInvalidField(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &trellocmd.UpdateCardCmd{}, newClient(t, srv), "c1", "title", "x")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, `invalid field "title"`)
	assert.Empty(t, srv.Requests())
}

func TestMoveCard(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/lists", 200, listsJSON)
	srv.Handle(http.MethodPut, "/1/cards/c1", 200, `{"id":"c1","name":"Ship","shortUrl":"https://trello.com/c/s"}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.MoveCardCmd{}, newClient(t, srv), "c1", "DONE", "top")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Moved card: Ship\n  To list: DONE\n  Position: top\n")
	req, _ := srv.Find(http.MethodPut, "/1/cards/c1")
	assert.Equal(t, doneID, req.Query.Get("idList"))
	assert.Equal(t, "top", req.Query.Get("pos"))
}

func TestMoveCardInvalidPosition(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &trellocmd.MoveCardCmd{}, newClient(t, srv), "c1", doneID, "middle")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, `invalid position "middle"`)
	assert.Empty(t, srv.Requests())
}

func TestArchiveList(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPut, "/1/lists/"+doneID+"/closed", 200, `{"id":"`+doneID+`","name":"Done","closed":true}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.ArchiveListCmd{}, newClient(t, srv), doneID)

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Archived list: Done\n")
	req, _ := srv.Find(http.MethodPut, "/1/lists/"+doneID+"/closed")
	assert.Equal(t, "true", req.Query.Get("value"))
}

func TestAddList(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/1/lists", 200, `{"id":"l9","name":"Sprint 5","pos":8192}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.AddListCmd{}, newClient(t, srv), "Sprint 5", "top")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Created list: Sprint 5\n  ID: l9\n  Position: 8192\n")
	req, _ := srv.Find(http.MethodPost, "/1/lists")
	assert.Equal(t, "b1", req.Query.Get("idBoard"))
	assert.Equal(t, "top", req.Query.Get("pos"))
}

func TestComments(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/c1/actions", 200, `[
		{"id":"a1","type":"commentCard","date":"2024-03-01T10:00:00.000Z","memberCreator":{"fullName":"Ann Lee"},"data":{"text":"Looks good"}},
		{"id":"a2","type":"commentCard","date":"2024-03-02T10:00:00.000Z","data":{"text":"Ship it"}}
	]`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.CommentsCmd{}, newClient(t, srv), "c1")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Comments (2) ===")
	assert.Contains(t, stdout, "Ann Lee:\n  Looks good\n  ID: a1\n")
	assert.Contains(t, stdout, "Unknown:\n  Ship it\n")
	req, _ := srv.Find(http.MethodGet, "/1/cards/c1/actions")
	assert.Equal(t, "commentCard", req.Query.Get("filter"))
}

func TestComment(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/1/cards/c1/actions/comments", 200, `{"id":"a9","date":"2024-03-03T10:00:00.000Z"}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.CommentCmd{}, newClient(t, srv), "c1", "ready", "for", "review")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Added comment to card\n  Comment: ready for review\n  ID: a9\n")
	req, _ := srv.Find(http.MethodPost, "/1/cards/c1/actions/comments")
	assert.Equal(t, "ready for review", req.Query.Get("text"))
}

func TestChecklistList(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/c1/checklists", 200, `[{"id":"cl1","name":"Release","checkItems":[
		{"id":"i1","name":"Tag","state":"complete"},
		{"id":"i2","name":"Announce","state":"incomplete"},
		{"id":"i3","name":"Deploy","state":"incomplete"}
	]}]`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.ChecklistCmd{}, newClient(t, srv), "c1")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "Release (1/3 - 33%)\n  ID: cl1\n  [x] Tag (i1)\n  [ ] Announce (i2)\n")
}

func TestChecklistActions(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/1/checklists", 200, `{"id":"cl2","name":"QA steps"}`)
	srv.Handle(http.MethodPost, "/1/checklists/cl2/checkItems", 200, `{"id":"i7","name":"Smoke test"}`)
	srv.Handle(http.MethodPut, "/1/cards/c1/checkItem/i7", 200, `{"id":"i7","name":"Smoke test","state":"incomplete"}`)
	svc := newClient(t, srv)

	stdout, _, code := testutil.RunCommand(t, &trellocmd.ChecklistCmd{}, svc, "c1", "create", "QA", "steps")
	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "Created checklist: QA steps\n")

	stdout, _, code = testutil.RunCommand(t, &trellocmd.ChecklistCmd{}, svc, "c1", "add", "cl2", "Smoke", "test")
	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "Added checklist item: Smoke test\n")

	stdout, _, code = testutil.RunCommand(t, &trellocmd.ChecklistCmd{}, svc, "c1", "uncheck", "i7")
	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "Marked item incomplete: Smoke test\n")

	create, _ := srv.Find(http.MethodPost, "/1/checklists")
	assert.Equal(t, "c1", create.Query.Get("idCard"))
	add, _ := srv.Find(http.MethodPost, "/1/checklists/cl2/checkItems")
	assert.Equal(t, "false", add.Query.Get("checked"))
	state, _ := srv.Find(http.MethodPut, "/1/cards/c1/checkItem/i7")
	assert.Equal(t, "incomplete", state.Query.Get("state"))
}

func TestChecklistUnknownAction(t *testing.T) {
	srv := testutil.NewServer(t)

	_, stderr, code := testutil.RunCommand(t, &trellocmd.ChecklistCmd{}, newClient(t, srv), "c1", "toggle")

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, `unknown action "toggle"`)
}

func TestLabelsList(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/labels", 200, boardLabelsJSON)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.LabelsCmd{}, newClient(t, srv))

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Board Labels (3) ===")
	assert.Contains(t, stdout, "  Bug (red) - ID: l1\n")
	assert.Contains(t, stdout, "  (no name) (blue) - ID: l3\n")
}

func TestLabelsAdd(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/c1", 200, `{"id":"c1","name":"Ship"}`)
	srv.Handle(http.MethodGet, "/1/boards/b1/labels", 200, boardLabelsJSON)
	srv.Handle(http.MethodPost, "/1/cards/c1/idLabels", 200, `["l1","l2"]`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.LabelsCmd{}, newClient(t, srv), "add", "c1", "bug,", "FEATURE", ",", "Nope")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, `Added labels to "Ship": Bug, Feature`)
	assert.Contains(t, stderr, "Labels not found: Nope\nAvailable labels:\n  - Bug\n  - Feature\n")
	assert.Equal(t, 2, srv.Count(http.MethodPost, "/1/cards/c1/idLabels"))
}

func TestLabelsAddNothingApplied(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/c1", 200, `{"id":"c1","name":"Ship"}`)
	srv.Handle(http.MethodGet, "/1/boards/b1/labels", 200, boardLabelsJSON)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.LabelsCmd{}, newClient(t, srv), "add", "c1", "Nope")

	assert.Equal(t, exitcode.UserError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Labels not found: Nope")
}

func TestLabelsAddContinuesAfterFailure(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/c1", 200, `{"id":"c1","name":"Ship"}`)
	srv.Handle(http.MethodGet, "/1/boards/b1/labels", 200, boardLabelsJSON)
	srv.HandleFunc(http.MethodPost, "/1/cards/c1/idLabels", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("value") == "l1" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
			return
		}
		w.Write([]byte(`[]`))
	})

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.LabelsCmd{}, newClient(t, srv), "add", "c1", "Bug, Feature")

	assert.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, `Added labels to "Ship": Feature`)
	assert.Contains(t, stderr, "Bug: HTTP 500: boom")
}

func TestLabelsRemove(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/cards/c1", 200, `{"id":"c1","name":"Ship","labels":[{"id":"l1","name":"Bug","color":"red"}]}`)
	srv.Handle(http.MethodDelete, "/1/cards/c1/idLabels/l1", 200, `{}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.LabelsCmd{}, newClient(t, srv), "remove", "c1", "bug, Feature")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, `Removed labels from "Ship": Bug`)
	assert.Contains(t, stderr, "Labels not found on card: Feature\nLabels on this card:\n  - Bug\n")
}

func TestLabelsUnknownCard(t *testing.T) {
	for _, action := range []string{"add", "remove"} {
		t.Run(action, func(t *testing.T) {
			srv := testutil.NewServer(t)
			srv.Handle(http.MethodGet, "/1/cards/gone", 404, `The requested resource was not found.`)
			srv.Handle(http.MethodGet, "/1/boards/b1/labels", 200, boardLabelsJSON)

			stdout, stderr, code := testutil.RunCommand(t, &trellocmd.LabelsCmd{}, newClient(t, srv), action, "gone", "Bug")

			assert.Equal(t, exitcode.UserError, code)
			assert.Empty(t, stdout)
			assert.Equal(t, "error: card gone not found\n", stderr)
		})
	}
}

func TestSearch(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/search", 200, `{"cards":[
		{"id":"c1","name":"Login bug","shortUrl":"https://trello.com/c/l","desc":"Fails with +","board":{"name":"Dev"},"list":{"name":"To Do"}},
		{"id":"c2","name":"Orphan"}
	]}`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.SearchCmd{}, newClient(t, srv), "--all-boards", "--limit", "5", "login", "bug")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Search Results (2 cards) ===")
	assert.Contains(t, stdout, "Login bug\n  ID: c1\n  Board: Dev\n  List: To Do\n")
	assert.Contains(t, stdout, "  Description: Fails with +\n")
	assert.Contains(t, stdout, "  Board: Unknown board\n  List: Unknown list\n")

	req, _ := srv.Find(http.MethodGet, "/1/search")
	assert.Equal(t, "login bug", req.Query.Get("query"))
	assert.Equal(t, "mine", req.Query.Get("idBoards"))
	assert.Equal(t, "5", req.Query.Get("cards_limit"))
}

func TestSearchEmpty(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/search", 200, `{"cards":[]}`)

	stdout, _, code := testutil.RunCommand(t, &trellocmd.SearchCmd{}, newClient(t, srv), "nothing")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "No cards found for: \"nothing\"\n", stdout)
}

func TestMyCards(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/members/me/cards", 200, `[
		{"id":"c1","name":"Late","idList":"5f0000000000000000000001","due":"2024-05-01T00:00:00.000Z"},
		{"id":"c2","name":"Later","idList":"5f0000000000000000000001","due":"2024-07-01T00:00:00.000Z"},
		{"id":"c3","name":"Finished","idList":"5f0000000000000000000002"}
	]`)
	srv.Handle(http.MethodGet, "/1/boards/b1/lists", 200, listsJSON)
	cmd := &trellocmd.MyCardsCmd{Now: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }}

	stdout, stderr, code := testutil.RunCommand(t, cmd, newClient(t, srv), "to")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Your Cards (2) ===")
	assert.Contains(t, stdout, "Late [Due: 2024-05-01] (OVERDUE)\n")
	assert.Contains(t, stdout, "Later [Due: 2024-07-01]\n")
	assert.NotContains(t, stdout, "Finished")
}

func TestMyCardsBoardOnly(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/members/me", 200, `{"id":"m1"}`)
	srv.Handle(http.MethodGet, "/1/boards/b1/cards", 200, `[{"id":"c1","name":"Theirs","idMembers":["m2"]}]`)

	stdout, _, code := testutil.RunCommand(t, &trellocmd.MyCardsCmd{}, newClient(t, srv), "--board")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "No cards assigned to you.\n", stdout)
}

func TestActivity(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/actions", 200, `[
		{"id":"a1","type":"createCard","date":"2024-03-01T10:00:00.000Z","memberCreator":{"username":"ann"},"data":{"card":{"name":"Ship"}}}
	]`)

	stdout, stderr, code := testutil.RunCommand(t, &trellocmd.ActivityCmd{}, newClient(t, srv), "5")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "=== Recent Activity (1) ===")
	assert.Contains(t, stdout, "] ann\n  created card \"Ship\"\n")
	req, _ := srv.Find(http.MethodGet, "/1/boards/b1/actions")
	assert.Equal(t, "5", req.Query.Get("limit"))
}

func TestDescribe(t *testing.T) {
	card := &trello.Ref{Name: "Ship"}
	tests := []struct {
		name   string
		action trello.Action
		want   string
	}{
		{"move", trello.Action{Type: "updateCard", Data: trello.ActionData{Card: card, ListBefore: &trello.Ref{Name: "To Do"}, ListAfter: &trello.Ref{Name: "Done"}}}, `moved "Ship" from To Do to Done`},
		{"archive", trello.Action{Type: "updateCard", Data: trello.ActionData{Card: card, Old: map[string]any{"closed": false}}}, `archived card "Ship"`},
		{"update", trello.Action{Type: "updateCard", Data: trello.ActionData{Card: card, Old: map[string]any{"name": "Shp"}}}, `updated card "Ship"`},
		{"comment", trello.Action{Type: "commentCard", Data: trello.ActionData{Card: card, Text: "short note"}}, `commented on "Ship": short note`},
		{"check item", trello.Action{Type: "updateCheckItemStateOnCard", Data: trello.ActionData{Card: card, CheckItem: &trello.CheckItem{Name: "Tag", State: "complete"}}}, `completed "Tag" on "Ship"`},
		{"checklist", trello.Action{Type: "addChecklistToCard", Data: trello.ActionData{Card: card, Checklist: &trello.Ref{Name: "QA"}}}, `added checklist "QA" to "Ship"`},
		{"list", trello.Action{Type: "createList", Data: trello.ActionData{List: &trello.Ref{Name: "Done"}}}, `created list "Done"`},
		{"other", trello.Action{Type: "addAttachmentToCard"}, "Add attachment to card"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trellocmd.Describe(tt.action))
		})
	}
}

func TestListNotFoundErrorIsTyped(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodGet, "/1/boards/b1/lists", 200, listsJSON)

	_, err := newClient(t, srv).ResolveList(t.Context(), "Backlog")

	var notFound *trello.ListNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, []string{"To Do", "Done"}, notFound.Available)
}
