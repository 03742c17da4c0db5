// Package trello is a client for the Trello REST API, scoped to one board.
package trello

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"apitools/internal/config"
	"apitools/internal/rest"
)

// BasePath is the API version prefix.
const BasePath = "/1"

var idPattern = regexp.MustCompile(`^[a-f0-9]{24}$`)

// IsID reports whether s looks like a Trello object id rather than a name.
func IsID(s string) bool {
	return idPattern.MatchString(s)
}

// UpdatableCardFields are the fields CardUpdate accepts.
var UpdatableCardFields = []string{"name", "desc", "due", "closed", "idList", "pos"}

// Client talks to the Trello API on behalf of one board.
type Client struct {
	boardID string
	api     *rest.Client
}

// New creates a client from resolved settings. The key and token travel in
// the query string of every request.
func New(cfg config.Trello, opts ...rest.Option) *Client {
	creds := rest.QueryParams{"key": {cfg.APIKey}, "token": {cfg.Token}}
	opts = append([]rest.Option{rest.WithMessage(rest.Fields("message", "error"))}, opts...)
	return &Client{boardID: cfg.BoardID, api: rest.New(cfg.Host, BasePath, creds, opts...)}
}

// NewFromConfig loads TRELLO_* settings and creates a client.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	settings, err := cfg.LoadTrello(ctx)
	if err != nil {
		return nil, err
	}
	return New(*settings, rest.WithLogger(cfg.Logger())), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.api.Into(ctx, http.MethodGet, rest.WithQuery(path, q), nil, out)
}

// send issues a write. Trello takes write parameters in the query string.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, out any) error {
	return c.api.Into(ctx, method, rest.WithQuery(path, q), nil, out)
}

// Board fetches the configured board.
func (c *Client) Board(ctx context.Context) (*Board, error) {
	var b Board
	if err := c.get(ctx, rest.Path("/boards/%s", c.boardID), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Lists returns the open lists of the board.
func (c *Client) Lists(ctx context.Context) ([]List, error) {
	var lists []List
	err := c.get(ctx, rest.Path("/boards/%s/lists", c.boardID), nil, &lists)
	return lists, err
}

// BoardCards returns the open cards of the board.
func (c *Client) BoardCards(ctx context.Context) ([]Card, error) {
	var cards []Card
	err := c.get(ctx, rest.Path("/boards/%s/cards", c.boardID), nil, &cards)
	return cards, err
}

// Actions returns recent board activity, newest first.
func (c *Client) Actions(ctx context.Context, limit int) ([]Action, error) {
	var actions []Action
	err := c.get(ctx, rest.Path("/boards/%s/actions", c.boardID), url.Values{"limit": {itoa(limit)}}, &actions)
	return actions, err
}

// Members returns the board's members.
func (c *Client) Members(ctx context.Context) ([]Member, error) {
	var members []Member
	err := c.get(ctx, rest.Path("/boards/%s/members", c.boardID), nil, &members)
	return members, err
}

// Labels returns the board's labels.
func (c *Client) Labels(ctx context.Context) ([]Label, error) {
	var labels []Label
	err := c.get(ctx, rest.Path("/boards/%s/labels", c.boardID), nil, &labels)
	return labels, err
}

// CreateList adds a list to the board. pos is "top", "bottom" or a number.
func (c *Client) CreateList(ctx context.Context, name, pos string) (*List, error) {
	if pos == "" {
		pos = "bottom"
	}
	var l List
	q := url.Values{"name": {name}, "idBoard": {c.boardID}, "pos": {pos}}
	if err := c.send(ctx, http.MethodPost, "/lists", q, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ArchiveList closes a list.
func (c *Client) ArchiveList(ctx context.Context, id string) (*List, error) {
	var l List
	if err := c.send(ctx, http.MethodPut, rest.Path("/lists/%s/closed", id), url.Values{"value": {"true"}}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Card fetches a card with its checklists, attachments, members and labels.
func (c *Client) Card(ctx context.Context, id string) (*Card, error) {
	q := url.Values{
		"checklists":  {"all"},
		"attachments": {"true"},
		"members":     {"true"},
		"labels":      {"true"},
	}
	var card Card
	if err := c.get(ctx, rest.Path("/cards/%s", id), q, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateCard adds a card to a list.
func (c *Client) CreateCard(ctx context.Context, in NewCard) (*Card, error) {
	pos := in.Pos
	if pos == "" {
		pos = "bottom"
	}
	q := url.Values{
		"idList": {in.ListID},
		"name":   {in.Name},
		"desc":   {in.Desc},
		"pos":    {pos},
		"due":    {in.Due},
	}
	if len(in.LabelIDs) > 0 {
		q.Set("idLabels", strings.Join(in.LabelIDs, ","))
	}
	var card Card
	if err := c.send(ctx, http.MethodPost, "/cards", q, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CardUpdate validates a user-facing field and value and returns the
// parameters to send.
func CardUpdate(field, value string) (url.Values, error) {
	for _, f := range UpdatableCardFields {
		if f != field {
			continue
		}
		if field == "closed" {
			value = strconv.FormatBool(value == "true")
		}
		return url.Values{field: {value}}, nil
	}
	return nil, fmt.Errorf("invalid field %q: valid fields are %s", field, strings.Join(UpdatableCardFields, ", "))
}

// UpdateCard sets fields on a card.
func (c *Client) UpdateCard(ctx context.Context, id string, fields url.Values) (*Card, error) {
	var card Card
	if err := c.send(ctx, http.MethodPut, rest.Path("/cards/%s", id), fields, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// ArchiveCard closes a card.
func (c *Client) ArchiveCard(ctx context.Context, id string) (*Card, error) {
	return c.UpdateCard(ctx, id, url.Values{"closed": {"true"}})
}

// DeleteCard deletes a card permanently.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	_, err := c.api.Delete(ctx, rest.Path("/cards/%s", id))
	return err
}

// MoveCard moves a card to another list.
func (c *Client) MoveCard(ctx context.Context, id, listID, pos string) (*Card, error) {
	if pos == "" {
		pos = "bottom"
	}
	return c.UpdateCard(ctx, id, url.Values{"idList": {listID}, "pos": {pos}})
}

// AddComment comments on a card.
func (c *Client) AddComment(ctx context.Context, cardID, text string) (*Action, error) {
	var a Action
	if err := c.send(ctx, http.MethodPost, rest.Path("/cards/%s/actions/comments", cardID), url.Values{"text": {text}}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Comments returns a card's comments, newest first.
func (c *Client) Comments(ctx context.Context, cardID string) ([]Action, error) {
	var actions []Action
	err := c.get(ctx, rest.Path("/cards/%s/actions", cardID), url.Values{"filter": {"commentCard"}}, &actions)
	return actions, err
}

// UpdateComment replaces a comment's text.
func (c *Client) UpdateComment(ctx context.Context, actionID, text string) (*Action, error) {
	var a Action
	if err := c.send(ctx, http.MethodPut, rest.Path("/actions/%s", actionID), url.Values{"text": {text}}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, actionID string) error {
	_, err := c.api.Delete(ctx, rest.Path("/actions/%s", actionID))
	return err
}

// Checklists returns a card's checklists.
func (c *Client) Checklists(ctx context.Context, cardID string) ([]Checklist, error) {
	var lists []Checklist
	err := c.get(ctx, rest.Path("/cards/%s/checklists", cardID), nil, &lists)
	return lists, err
}

// CreateChecklist adds a checklist to a card.
func (c *Client) CreateChecklist(ctx context.Context, cardID, name string) (*Checklist, error) {
	var cl Checklist
	if err := c.send(ctx, http.MethodPost, "/checklists", url.Values{"idCard": {cardID}, "name": {name}}, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

// AddCheckItem appends an unchecked item to a checklist.
func (c *Client) AddCheckItem(ctx context.Context, checklistID, name string) (*CheckItem, error) {
	var item CheckItem
	q := url.Values{"name": {name}, "checked": {"false"}}
	if err := c.send(ctx, http.MethodPost, rest.Path("/checklists/%s/checkItems", checklistID), q, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SetCheckItemState checks or unchecks an item.
func (c *Client) SetCheckItemState(ctx context.Context, cardID, itemID string, complete bool) (*CheckItem, error) {
	state := "incomplete"
	if complete {
		state = "complete"
	}
	var item CheckItem
	path := rest.Path("/cards/%s/checkItem/%s", cardID, itemID)
	if err := c.send(ctx, http.MethodPut, path, url.Values{"state": {state}}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCheckItem removes an item from a checklist.
func (c *Client) DeleteCheckItem(ctx context.Context, checklistID, itemID string) error {
	_, err := c.api.Delete(ctx, rest.Path("/checklists/%s/checkItems/%s", checklistID, itemID))
	return err
}

// DeleteChecklist removes a checklist.
func (c *Client) DeleteChecklist(ctx context.Context, id string) error {
	_, err := c.api.Delete(ctx, rest.Path("/checklists/%s", id))
	return err
}

// Search finds cards matching query on the board, or on every board of the
// user when allBoards is set.
func (c *Client) Search(ctx context.Context, query string, allBoards bool, limit int) ([]Card, error) {
	if limit <= 0 {
		limit = 20
	}
	boards := c.boardID
	if allBoards {
		boards = "mine"
	}
	q := url.Values{
		"query":       {query},
		"modelTypes":  {"cards"},
		"cards_limit": {strconv.Itoa(limit)},
		"card_board":  {"true"},
		"card_list":   {"true"},
		"idBoards":    {boards},
	}
	var resp struct {
		Cards []Card `json:"cards"`
	}
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

// Me returns the token's member.
func (c *Client) Me(ctx context.Context) (*Member, error) {
	var m Member
	if err := c.get(ctx, "/members/me", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MyCards returns the open cards assigned to the token's member on any
// board.
func (c *Client) MyCards(ctx context.Context) ([]Card, error) {
	var cards []Card
	err := c.get(ctx, "/members/me/cards", nil, &cards)
	return cards, err
}

// MyBoardCards returns the cards on this board assigned to the token's
// member. The member and the cards are fetched concurrently.
func (c *Client) MyBoardCards(ctx context.Context) ([]Card, error) {
	var (
		me    *Member
		cards []Card
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		me, err = c.Me(gctx)
		return err
	})
	g.Go(func() (err error) {
		cards, err = c.BoardCards(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var mine []Card
	for _, card := range cards {
		if card.HasMember(me.ID) {
			mine = append(mine, card)
		}
	}
	return mine, nil
}

// AddLabel attaches a board label to a card.
func (c *Client) AddLabel(ctx context.Context, cardID, labelID string) error {
	return c.send(ctx, http.MethodPost, rest.Path("/cards/%s/idLabels", cardID), url.Values{"value": {labelID}}, nil)
}

// RemoveLabel detaches a label from a card.
func (c *Client) RemoveLabel(ctx context.Context, cardID, labelID string) error {
	_, err := c.api.Delete(ctx, rest.Path("/cards/%s/idLabels/%s", cardID, labelID))
	return err
}

// Attachments returns a card's attachments.
func (c *Client) Attachments(ctx context.Context, cardID string) ([]Attachment, error) {
	var atts []Attachment
	err := c.get(ctx, rest.Path("/cards/%s/attachments", cardID), nil, &atts)
	return atts, err
}

// AddAttachment attaches a link to a card.
func (c *Client) AddAttachment(ctx context.Context, cardID, link, name string) (*Attachment, error) {
	var att Attachment
	q := url.Values{"url": {link}, "name": {name}}
	if err := c.send(ctx, http.MethodPost, rest.Path("/cards/%s/attachments", cardID), q, &att); err != nil {
		return nil, err
	}
	return &att, nil
}

// ListNotFoundError is returned when no list on the board has the requested
// name.
type ListNotFoundError struct {
	Name      string
	Available []string
}

func (e *ListNotFoundError) Error() string {
	return fmt.Sprintf("list %q not found. Available lists: %s", e.Name, strings.Join(e.Available, ", "))
}

// ListIDByName returns the id of the list named name, ignoring case.
func (c *Client) ListIDByName(ctx context.Context, name string) (string, error) {
	lists, err := c.Lists(ctx)
	if err != nil {
		return "", err
	}
	names := make([]string, len(lists))
	for i, l := range lists {
		if strings.EqualFold(l.Name, name) {
			return l.ID, nil
		}
		names[i] = l.Name
	}
	return "", &ListNotFoundError{Name: name, Available: names}
}

// ResolveList returns idOrName unchanged when it is an id, otherwise the id
// of the list with that name.
func (c *Client) ResolveList(ctx context.Context, idOrName string) (string, error) {
	if IsID(idOrName) {
		return idOrName, nil
	}
	return c.ListIDByName(ctx, idOrName)
}

// BoardOverview returns every list with its cards. Lists and cards are
// fetched concurrently.
func (c *Client) BoardOverview(ctx context.Context) ([]ListOverview, error) {
	var (
		lists []List
		cards []Card
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lists, err = c.Lists(gctx)
		return err
	})
	g.Go(func() (err error) {
		cards, err = c.BoardCards(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byList := make(map[string][]Card, len(lists))
	for _, card := range cards {
		byList[card.IDList] = append(byList[card.IDList], card)
	}
	overview := make([]ListOverview, len(lists))
	for i, l := range lists {
		overview[i] = ListOverview{List: l, Cards: byList[l.ID]}
	}
	return overview, nil
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
