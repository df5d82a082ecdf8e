package cli

import (
	"strings"

	"resource-cards/internal/model"

	"github.com/spf13/cobra"
)

func newGraphCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "graph",
		Aliases: []string{"graphs"},
		Short:   "Manage resource models (graphs) in the local store",
	}
	cmd.AddCommand(newGraphCreateCmd(app))
	cmd.AddCommand(newGraphListCmd(app))
	cmd.AddCommand(newGraphShowCmd(app))
	return cmd
}

func newGraphCreateCmd(app *App) *cobra.Command {
	var name, slug, description string
	var isResource bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLocal("graph create"); err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			g := model.Graph{Name: name, Description: strings.TrimSpace(description), IsResource: isResource}
			if cmd.Flags().Changed("slug") {
				g.Slug = &slug
			}
			g, err = st.CreateGraph(cmd.Context(), g)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Graph name")
	cmd.Flags().StringVar(&slug, "slug", "", "Unique slug (letters, numbers, underscores or hyphens)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().BoolVar(&isResource, "resource", true, "Graph models resource instances")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newGraphListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLocal("graph list"); err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			gs, err := st.ListGraphs(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": gs})
		},
	}
}

func newGraphShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show a graph by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLocal("graph show"); err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			g, err := st.GraphBySlug(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}
}
