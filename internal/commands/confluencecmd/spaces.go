package confluencecmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/backend/confluence"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
	"apitools/internal/rest"
)

func init() {
	Registry.MustRegister(&ListSpacesCmd{}, &GetSpaceCmd{}, &AddLabelsCmd{})
}

// ListSpacesCmd lists the spaces visible to the user.
type ListSpacesCmd struct{}

func (c *ListSpacesCmd) Name() string      { return "list-spaces" }
func (c *ListSpacesCmd) Aliases() []string { return []string{"spaces"} }
func (c *ListSpacesCmd) Synopsis() string  { return "List spaces" }
func (c *ListSpacesCmd) Usage() string     { return "confluence list-spaces [limit=25]" }
func (c *ListSpacesCmd) NeedsAuth() bool   { return true }

func (c *ListSpacesCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ListSpacesCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	limit, ok := parseLimit(arg, 25)
	if !ok {
		return commands.UserError(errOut, "limit must be a positive integer")
	}

	spaces, err := svc.Spaces(ctx, limit)
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	if len(spaces) == 0 {
		p.Println("No spaces found.")
		return exitcode.Success
	}
	p.Header(fmt.Sprintf("Found %d spaces", len(spaces)))
	for _, s := range spaces {
		printSpace(p, svc, s)
		p.Println()
	}
	return exitcode.Success
}

func printSpace(p *output.Printer, svc *confluence.Client, s confluence.Space) {
	p.Printf("%s (%s)\n", s.Name, s.Key)
	p.Field("ID", s.ID)
	p.Field("Type", s.Type)
	p.Field("Status", s.Status)
	if desc := s.Description.Plain.Value; desc != "" {
		p.Field("Description", output.Truncate(output.OneLine(desc), 100))
	}
	p.Field("URL", svc.SpaceURL(s.Key))
}

// GetSpaceCmd shows one space.
type GetSpaceCmd struct{}

func (c *GetSpaceCmd) Name() string      { return "get-space" }
func (c *GetSpaceCmd) Aliases() []string { return []string{"space"} }
func (c *GetSpaceCmd) Synopsis() string  { return "Show a space" }
func (c *GetSpaceCmd) Usage() string     { return "confluence get-space <space-id>" }
func (c *GetSpaceCmd) NeedsAuth() bool   { return true }

func (c *GetSpaceCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *GetSpaceCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return commands.UsageError(errOut, c.Usage())
	}
	space, err := svc.Space(ctx, args[0])
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "space %s not found", args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}

	p := output.New(out)
	printSpace(p, svc, *space)
	if space.HomepageID != "" {
		p.Field("Homepage", space.HomepageID)
	}
	return exitcode.Success
}

// AddLabelsCmd attaches labels to a page.
type AddLabelsCmd struct{}

func (c *AddLabelsCmd) Name() string      { return "add-labels" }
func (c *AddLabelsCmd) Aliases() []string { return []string{"label"} }
func (c *AddLabelsCmd) Synopsis() string  { return "Add labels to a page" }
func (c *AddLabelsCmd) Usage() string     { return "confluence add-labels <page-id> <label...>" }
func (c *AddLabelsCmd) NeedsAuth() bool   { return true }

func (c *AddLabelsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddLabelsCmd) Run(ctx context.Context, cfg *config.Config, svc *confluence.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return commands.UsageError(errOut, c.Usage())
	}
	labels, err := svc.AddLabels(ctx, args[0], args[1:])
	if rest.IsNotFound(err) {
		return commands.UserError(errOut, "page %s not found", args[0])
	}
	if err != nil {
		return commands.BackendError(errOut, err)
	}
	if cfg.Quiet {
		return exitcode.Success
	}

	p := output.New(out)
	p.Success("Labeled page %s", args[0])
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	p.Field("Labels", strings.Join(names, ", "))
	return exitcode.Success
}
