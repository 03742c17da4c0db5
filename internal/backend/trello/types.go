package trello

import "time"

// Board is a Trello board.
type Board struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	URL      string `json:"url"`
	ShortURL string `json:"shortUrl"`
	Closed   bool   `json:"closed"`
}

// List is a column on a board.
type List struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Closed  bool    `json:"closed"`
	Pos     float64 `json:"pos"`
	IDBoard string  `json:"idBoard"`
}

// Card is a card. Labels, members, checklists and attachments are only
// filled by Card; Board and List only by Search.
type Card struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Desc             string   `json:"desc"`
	Due              string   `json:"due"`
	DueComplete      bool     `json:"dueComplete"`
	Closed           bool     `json:"closed"`
	Pos              float64  `json:"pos"`
	IDList           string   `json:"idList"`
	IDBoard          string   `json:"idBoard"`
	IDMembers        []string `json:"idMembers"`
	IDLabels         []string `json:"idLabels"`
	ShortURL         string   `json:"shortUrl"`
	URL              string   `json:"url"`
	DateLastActivity string   `json:"dateLastActivity"`

	Labels      []Label      `json:"labels"`
	Members     []Member     `json:"members"`
	Checklists  []Checklist  `json:"checklists"`
	Attachments []Attachment `json:"attachments"`

	Board *Ref `json:"board"`
	List  *Ref `json:"list"`
}

// DueTime parses Due. ok is false when the card has no due date.
func (c Card) DueTime() (time.Time, bool) {
	if c.Due == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, c.Due)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Overdue reports whether the card is due before now and not yet marked
// complete.
func (c Card) Overdue(now time.Time) bool {
	due, ok := c.DueTime()
	return ok && !c.DueComplete && due.Before(now)
}

// HasMember reports whether memberID is assigned to the card.
func (c Card) HasMember(memberID string) bool {
	for _, id := range c.IDMembers {
		if id == memberID {
			return true
		}
	}
	return false
}

// Label is a board label. Name may be empty for color-only labels.
type Label struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	IDBoard string `json:"idBoard"`
}

// Member is a Trello user.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// DisplayName returns the full name, the username, or "Unknown".
func (m *Member) DisplayName() string {
	switch {
	case m == nil:
		return "Unknown"
	case m.FullName != "":
		return m.FullName
	case m.Username != "":
		return m.Username
	}
	return "Unknown"
}

// Checklist is a checklist on a card.
type Checklist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	IDCard     string      `json:"idCard"`
	CheckItems []CheckItem `json:"checkItems"`
}

// Progress returns the number of complete items and the total.
func (c Checklist) Progress() (done, total int) {
	for _, item := range c.CheckItems {
		if item.Complete() {
			done++
		}
	}
	return done, len(c.CheckItems)
}

// CheckItem is one checklist entry.
type CheckItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	State string  `json:"state"`
	Pos   float64 `json:"pos"`
}

// Complete reports whether the item is checked.
func (i CheckItem) Complete() bool {
	return i.State == "complete"
}

// Attachment is a file or link attached to a card.
type Attachment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Date  string `json:"date"`
	Bytes int64  `json:"bytes"`
}

// Ref is the {id, name} summary embedded in actions and search results.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Action is an entry in a board or card activity feed. Comments are
// actions of type commentCard.
type Action struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Date          string     `json:"date"`
	MemberCreator *Member    `json:"memberCreator"`
	Data          ActionData `json:"data"`
}

// ActionData holds the objects an action touched.
type ActionData struct {
	Text       string         `json:"text"`
	Card       *Ref           `json:"card"`
	List       *Ref           `json:"list"`
	ListBefore *Ref           `json:"listBefore"`
	ListAfter  *Ref           `json:"listAfter"`
	Checklist  *Ref           `json:"checklist"`
	CheckItem  *CheckItem     `json:"checkItem"`
	Old        map[string]any `json:"old"`
}

// ListOverview is a list with its open cards.
type ListOverview struct {
	List
	Cards []Card
}

// NewCard describes a card to create.
type NewCard struct {
	ListID   string
	Name     string
	Desc     string
	Due      string
	Pos      string
	LabelIDs []string
}
