package trellocmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"apitools/internal/backend/trello"
	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/output"
)

func init() {
	Registry.MustRegister(&LabelsCmd{})
}

// LabelsCmd lists board labels and adds or removes them on cards by name.
type LabelsCmd struct{}

func (c *LabelsCmd) Name() string      { return "labels" }
func (c *LabelsCmd) Aliases() []string { return []string{"label"} }
func (c *LabelsCmd) Synopsis() string  { return "List, show, add or remove labels" }
func (c *LabelsCmd) Usage() string {
	return `trello labels [list]
       trello labels show <card-id>
       trello labels add <card-id> "Label1, Label2, ..."
       trello labels remove <card-id> "Label1, Label2, ..."`
}
func (c *LabelsCmd) NeedsAuth() bool { return true }

func (c *LabelsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LabelsCmd) Run(ctx context.Context, cfg *config.Config, svc *trello.Client, args []string, out, errOut io.Writer) int {
	action := "list"
	if len(args) > 0 {
		action, args = strings.ToLower(args[0]), args[1:]
	}
	p := output.New(out)

	switch action {
	case "list":
		labels, err := svc.Labels(ctx)
		if err != nil {
			return commands.BackendError(errOut, err)
		}
		if len(labels) == 0 {
			p.Println("No labels on this board.")
			return exitcode.Success
		}
		p.Header(fmt.Sprintf("Board Labels (%d)", len(labels)))
		for _, l := range labels {
			printLabel(p, l)
		}
		return exitcode.Success

	case "show":
		if len(args) != 1 {
			return commands.UsageError(errOut, "trello labels show <card-id>")
		}
		card, code := fetchCard(ctx, svc, args[0], errOut)
		if code != exitcode.Success {
			return code
		}
		if len(card.Labels) == 0 {
			p.Printf("Card %q has no labels.\n", card.Name)
			return exitcode.Success
		}
		p.Header(fmt.Sprintf("Labels on %q", card.Name))
		for _, l := range card.Labels {
			printLabel(p, l)
		}
		return exitcode.Success

	case "add", "remove":
		if len(args) < 2 {
			return commands.UsageError(errOut, fmt.Sprintf("trello labels %s <card-id> \"Label1, Label2, ...\"", action))
		}
		names := splitNames(strings.Join(args[1:], " "))
		if len(names) == 0 {
			return commands.UserError(errOut, "no label names given")
		}
		if action == "add" {
			return c.add(ctx, cfg, p, svc, args[0], names, errOut)
		}
		return c.remove(ctx, cfg, p, svc, args[0], names, errOut)
	}
	return commands.UserError(errOut, "unknown action %q: valid actions are list, show, add, remove", action)
}

func (c *LabelsCmd) add(ctx context.Context, cfg *config.Config, p *output.Printer, svc *trello.Client, cardID string, names []string, errOut io.Writer) int {
	var (
		card    *trello.Card
		cardErr error
		labels  []trello.Label
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		card, cardErr = svc.Card(gctx, cardID)
		return cardErr
	})
	g.Go(func() (err error) {
		labels, err = svc.Labels(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if missingCard(cardErr) {
			return commands.UserError(errOut, "card %s not found", cardID)
		}
		return commands.BackendError(errOut, err)
	}

	res := applyLabels(ctx, names, labels, func(ctx context.Context, id string) error {
		return svc.AddLabel(ctx, cardID, id)
	})
	if len(res.applied) > 0 {
		p.Success("Added labels to %q: %s", card.Name, strings.Join(res.applied, ", "))
	}
	if len(res.missing) > 0 {
		fmt.Fprintf(errOut, "Labels not found: %s\nAvailable labels:\n", strings.Join(res.missing, ", "))
		listNamed(errOut, labels)
	}
	return res.exit(cfg, errOut)
}

func (c *LabelsCmd) remove(ctx context.Context, cfg *config.Config, p *output.Printer, svc *trello.Client, cardID string, names []string, errOut io.Writer) int {
	card, code := fetchCard(ctx, svc, cardID, errOut)
	if code != exitcode.Success {
		return code
	}

	res := applyLabels(ctx, names, card.Labels, func(ctx context.Context, id string) error {
		return svc.RemoveLabel(ctx, cardID, id)
	})
	if len(res.applied) > 0 {
		p.Success("Removed labels from %q: %s", card.Name, strings.Join(res.applied, ", "))
	}
	if len(res.missing) > 0 {
		fmt.Fprintf(errOut, "Labels not found on card: %s\n", strings.Join(res.missing, ", "))
		if len(card.Labels) > 0 {
			fmt.Fprintln(errOut, "Labels on this card:")
			listNamed(errOut, card.Labels)
		}
	}
	return res.exit(cfg, errOut)
}

func listNamed(w io.Writer, labels []trello.Label) {
	for _, l := range labels {
		if l.Name != "" {
			fmt.Fprintf(w, "  - %s\n", l.Name)
		}
	}
}

// labelResult is the outcome of a bulk label change.
type labelResult struct {
	applied  []string
	missing  []string
	failures *multierror.Error
}

// applyLabels matches names against candidates, ignoring case, and calls
// apply once per matched label. A failed call does not stop the rest.
func applyLabels(ctx context.Context, names []string, candidates []trello.Label, apply func(context.Context, string) error) labelResult {
	var res labelResult
	for _, name := range names {
		label, ok := findLabel(candidates, name)
		if !ok {
			res.missing = append(res.missing, name)
			continue
		}
		if err := apply(ctx, label.ID); err != nil {
			res.failures = multierror.Append(res.failures, fmt.Errorf("%s: %w", label.Name, err))
			continue
		}
		res.applied = append(res.applied, label.Name)
	}
	return res
}

func findLabel(labels []trello.Label, name string) (trello.Label, bool) {
	for _, l := range labels {
		if l.Name != "" && strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return trello.Label{}, false
}

// exit reports failed requests and fails only when no label was applied.
func (r labelResult) exit(cfg *config.Config, errOut io.Writer) int {
	if r.failures != nil {
		cfg.Logger().Debug("label requests failed", "failed", r.failures.Len(), "errors", r.failures.Error())
		for _, err := range r.failures.Errors {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		}
	}
	if len(r.applied) > 0 {
		return exitcode.Success
	}
	return exitcode.UserError
}
