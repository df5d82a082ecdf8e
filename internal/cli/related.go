package cli

import (
	"strings"

	"resource-cards/internal/related"
	"resource-cards/internal/search"

	"github.com/spf13/cobra"
)

func newRelatedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "related",
		Short: "Relate resource instances and browse their relationships",
	}
	cmd.AddCommand(newRelatedAddCmd(app))
	cmd.AddCommand(newRelatedListCmd(app))
	cmd.AddCommand(newRelatedSearchCmd(app))
	return cmd
}

func newRelatedAddCmd(app *App) *cobra.Command {
	var relType string
	cmd := &cobra.Command{
		Use:   "add <resource-id> <related-id>...",
		Short: "Relate one or more resource instances to a resource",
		Long: strings.TrimSpace(`
Relate every <related-id> to <resource-id> in one batch request.

Every id must name a stored resource instance. Self relations and
relationships that already exist are skipped; the created relationships are
printed.
`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := app.openBackend(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			results := search.NewResults(nil)
			seen := map[string]bool{}
			for _, id := range args[1:] {
				id = strings.TrimSpace(id)
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				results.Toggle(id)
			}

			if strings.TrimSpace(relType) == "" {
				relType = app.cfg.Relationships.Type
			}
			m := related.NewManager(related.Options{
				Results:          results,
				Creator:          b,
				RelationshipType: relType,
				Log:              app.log,
			})
			defer m.Close()

			results.ShowRelationships(strings.TrimSpace(args[0]))
			rels, err := m.SaveRelationships(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": rels,
				"meta": map[string]any{
					"requested": len(seen),
					"created":   len(rels),
					"pending":   len(results.RelationshipCandidates()),
				},
			})
		},
	}
	cmd.Flags().StringVar(&relType, "type", "", "Relationship type (default: relationships.type from config)")
	return cmd
}

func newRelatedListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <resource-id>",
		Short: "List the relationships touching a resource and its direct neighbours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := app.openBackend(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			id := strings.TrimSpace(args[0])
			m := related.NewManager(related.Options{
				Graphs:            related.NewGraphFactory(b),
				EditingInstanceID: id,
				Log:               app.log,
			})
			defer m.Close()

			panel := related.NewPanel(related.Target{ResourceID: id})
			if err := m.ShowGraph(ctx, panel); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": panel.Graph.Edges,
				"meta": map[string]any{
					"resourceinstanceid": id,
					"neighbours":         panel.Graph.Neighbours(),
				},
			})
		},
	}
}

func newRelatedSearchCmd(app *App) *cobra.Command {
	var limit int
	var graphID string
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Rank resource instances by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := app.openBackend(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			resources, err := b.ListResources(ctx, strings.TrimSpace(graphID))
			if err != nil {
				return writeErr(cmd, err)
			}
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			hits := search.NewResults(resources).Search(term, limit)
			return writeOut(cmd, app, map[string]any{"data": hits})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Max hits (0 = all)")
	cmd.Flags().StringVar(&graphID, "graph", "", "Only search resources of this graph id")
	return cmd
}
