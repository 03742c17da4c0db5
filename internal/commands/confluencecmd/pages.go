package confluencecmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/pflag"

	"apitools/internal/backend/confluence"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
	"apitools/internal/rest"
)

func init() {
	Registry.MustRegister(
		&GetPageCmd{},
		&SearchPagesCmd{},
		&CreatePageCmd{},
		&UpdatePageCmd{},
		&DeletePageCmd{},
		&ChildrenCmd{},
		&BlogPostsCmd{},
	)
}

// GetPageCmd prints page details and a content preview.
type GetPageCmd struct {
	open bool

	// Browser opens the page URL; nil uses the system browser.
	Browser commands.Opener
}

func (c *GetPageCmd) Name() string      { return "get-page" }
func (c *GetPageCmd) Aliases() []string { return []string{"page"} }
func (c *GetPageCmd) Synopsis() string  { return "Show a page and a preview of its content" }
func (c *GetPageCmd) Usage() string     { return "confluence get-page [--open] <page-id>" }
func (c *GetPageCmd) NeedsAuth() bool   { return true }

func (c *GetPageCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "Open the page in a browser")
}

func (c *GetPageCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	id := args[0]

	page, err := svc.Page(ctx, id)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "page %s not found", id)
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	url := svc.PageURL(page.SpaceID, page.ID)
	p := output.New(out)
	p.Header(output.Untitled(page.Title))
	p.Field("ID", page.ID)
	p.Field("Space", page.SpaceID)
	p.Field("Status", page.Status)
	if page.Version != nil {
		p.Field("Version", page.Version.Number)
	}
	if page.CreatedAt != "" {
		p.Field("Created", output.Date(page.CreatedAt))
	}
	p.Field("URL", url)

	if text := page.Content("\n"); text != "" {
		p.Section("Content Preview")
		p.Println(output.Truncate(text, previewLength))
	}

	if c.open {
		if err := c.Browser.Open(url, errOut); err != nil {
			return commands.UserError(errOut, "opening browser: %v", err)
		}
	}
	return exitcode.Success
}

// SearchPagesCmd lists pages by space and/or title.
type SearchPagesCmd struct {
	spaceID string
	title   string
	limit   int
}

func (c *SearchPagesCmd) Name() string      { return "search-pages" }
func (c *SearchPagesCmd) Aliases() []string { return []string{"search"} }
func (c *SearchPagesCmd) Synopsis() string  { return "Find pages by space or title" }
func (c *SearchPagesCmd) Usage() string {
	return "confluence search-pages [--space-id <id>] [--title <title>] [--limit <n>]"
}
func (c *SearchPagesCmd) NeedsAuth() bool { return true }

func (c *SearchPagesCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.spaceID, "space-id", "", "Only pages in this space")
	fs.StringVar(&c.title, "title", "", "Exact page title")
	fs.IntVar(&c.limit, "limit", 0, "Maximum results")
}

func (c *SearchPagesCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 0 || (c.spaceID == "" && c.title == "") {
		return commands.UsageError(errOut, c.Usage())
	}
	if c.limit < 0 {
		return commands.UserError(errOut, "limit must be a positive integer")
	}

	pages, err := svc.SearchPages(ctx, confluence.PageQuery{SpaceID: c.spaceID, Title: c.title, Limit: c.limit})
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	return printPages(output.New(out), svc, pages, "pages")
}

func printPages(p *output.Printer, svc *confluence.Client, pages []confluence.Page, noun string) int {
	if len(pages) == 0 {
		p.Printf("No %s found.\n", noun)
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Found %d %s", len(pages), noun))
	for _, page := range pages {
		printPageLine(p, svc, page)
	}
	return exitcode.Success
}

// CreatePageCmd creates a page from plain text.
type CreatePageCmd struct{}

func (c *CreatePageCmd) Name() string      { return "create-page" }
func (c *CreatePageCmd) Aliases() []string { return nil }
func (c *CreatePageCmd) Synopsis() string  { return "Create a page" }
func (c *CreatePageCmd) Usage() string {
	return "confluence create-page <space-id> <title> <content> [parent-id]"
}
func (c *CreatePageCmd) NeedsAuth() bool { return true }

func (c *CreatePageCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *CreatePageCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 3 || len(args) > 4 {
		return commands.UsageError(errOut, c.Usage())
	}
	in := confluence.NewPage{SpaceID: args[0], Title: args[1], Content: args[2]}
	if len(args) == 4 {
		in.ParentID = args[3]
	}

	page, err := svc.CreatePage(ctx, in)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if cfg.Quiet {
		p.Println(page.ID)
		return exitcode.Success
	}
	p.Success("Created page: %s", page.Title)
	p.Field("ID", page.ID)
	p.Field("URL", svc.PageURL(in.SpaceID, page.ID))
	return exitcode.Success
}

// UpdatePageCmd replaces a page's title and content.
type UpdatePageCmd struct {
	message string
}

func (c *UpdatePageCmd) Name() string      { return "update-page" }
func (c *UpdatePageCmd) Aliases() []string { return nil }
func (c *UpdatePageCmd) Synopsis() string  { return "Replace a page's title and content" }
func (c *UpdatePageCmd) Usage() string {
	return "confluence update-page [--message <text>] <page-id> <title> <content> <version>"
}
func (c *UpdatePageCmd) NeedsAuth() bool { return true }

func (c *UpdatePageCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.message, "message", "", "Version message")
}

func (c *UpdatePageCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 4 {
		return commands.UsageError(errOut, c.Usage())
	}
	version, err := strconv.Atoi(args[3])
	if err != nil || version < 1 {
		return commands.UserError(errOut, "version must be a positive integer (current version + 1), got %q", args[3])
	}

	page, err := svc.UpdatePage(ctx, args[0], confluence.PageUpdate{
		Title:   args[1],
		Content: args[2],
		Version: version,
		Message: c.message,
	})
	if rest.StatusCode(err) == http.StatusConflict {
		return commands.UserError(errOut, "version conflict: %d is not the next version of page %s", version, args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	p := output.New(out)
	p.Success("Updated page: %s", page.Title)
	p.Field("ID", page.ID)
	if page.Version != nil {
		p.Field("Version", page.Version.Number)
	}
	p.Field("URL", svc.PageURL(page.SpaceID, page.ID))
	return exitcode.Success
}

// DeletePageCmd moves a page to the trash.
type DeletePageCmd struct{}

func (c *DeletePageCmd) Name() string      { return "delete-page" }
func (c *DeletePageCmd) Aliases() []string { return nil }
func (c *DeletePageCmd) Synopsis() string  { return "Delete a page" }
func (c *DeletePageCmd) Usage() string     { return "confluence delete-page <page-id>" }
func (c *DeletePageCmd) NeedsAuth() bool   { return true }

func (c *DeletePageCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DeletePageCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	err := svc.DeletePage(ctx, args[0])
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "page %s not found", args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if !cfg.Quiet {
		output.New(out).Success("Deleted page: %s", args[0])
	}
	return exitcode.Success
}

// ChildrenCmd lists the direct children of a page.
type ChildrenCmd struct {
	limit int
}

func (c *ChildrenCmd) Name() string      { return "children" }
func (c *ChildrenCmd) Aliases() []string { return nil }
func (c *ChildrenCmd) Synopsis() string  { return "List child pages" }
func (c *ChildrenCmd) Usage() string     { return "confluence children [--limit <n>] <page-id>" }
func (c *ChildrenCmd) NeedsAuth() bool   { return true }

func (c *ChildrenCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.limit, "limit", 25, "Maximum results")
}

func (c *ChildrenCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	pages, err := svc.Children(ctx, args[0], c.limit)
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "page %s not found", args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	return printPages(output.New(out), svc, pages, "child pages")
}

// BlogPostsCmd lists blog posts.
type BlogPostsCmd struct {
	spaceID string
	limit   int
}

func (c *BlogPostsCmd) Name() string      { return "blogposts" }
func (c *BlogPostsCmd) Aliases() []string { return []string{"blog"} }
func (c *BlogPostsCmd) Synopsis() string  { return "List blog posts" }
func (c *BlogPostsCmd) Usage() string     { return "confluence blogposts [--space-id <id>] [--limit <n>]" }
func (c *BlogPostsCmd) NeedsAuth() bool   { return true }

func (c *BlogPostsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.spaceID, "space-id", "", "Only posts in this space")
	fs.IntVar(&c.limit, "limit", 25, "Maximum results")
}

func (c *BlogPostsCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 0 {
		return commands.UsageError(errOut, c.Usage())
	}
	posts, err := svc.BlogPosts(ctx, c.spaceID, c.limit)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(posts) == 0 {
		p.Println("No blog posts found.")
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Found %d blog posts", len(posts)))
	for _, post := range posts {
		when := ""
		if post.CreatedAt != "" {
			when = output.Date(post.CreatedAt) + "  "
		}
		p.Printf("%s%s (ID: %s)\n", when, output.Untitled(post.Title), post.ID)
	}
	return exitcode.Success
}
