package confluence

// Page is a page or blog post.
type Page struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	SpaceID   string   `json:"spaceId"`
	ParentID  string   `json:"parentId"`
	Status    string   `json:"status"`
	AuthorID  string   `json:"authorId"`
	CreatedAt string   `json:"createdAt"`
	Version   *Version `json:"version"`
	Body      Body     `json:"body"`
}

// Version identifies one revision of a page.
type Version struct {
	Number    int    `json:"number"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// Body holds the representations returned for a page.
type Body struct {
	AtlasDocFormat *BodyValue `json:"atlas_doc_format"`
	Storage        *BodyValue `json:"storage"`
}

// BodyValue is one representation of a page body. For atlas_doc_format the
// value is a JSON-encoded document.
type BodyValue struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// Space is a Confluence space.
type Space struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	HomepageID  string `json:"homepageId"`
	Description struct {
		Plain BodyValue `json:"plain"`
	} `json:"description"`
}

// Label is a content label.
type Label struct {
	ID     string `json:"id"`
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

// PageQuery filters SearchPages. At least one field should be set.
type PageQuery struct {
	SpaceID string
	Title   string
	Limit   int
}

// NewPage describes a page to create. Content is plain text; paragraphs are
// separated by blank lines.
type NewPage struct {
	SpaceID  string
	Title    string
	Content  string
	ParentID string
}

// PageUpdate replaces the title and body of a page. Version is the new
// version number, one more than the current.
type PageUpdate struct {
	Title   string
	Content string
	Version int
	Message string
}
