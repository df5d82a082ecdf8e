package cli

import (
	"errors"
	"strings"

	"resource-cards/internal/model"

	"github.com/spf13/cobra"
)

func newResourceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resource",
		Aliases: []string{"resources"},
		Short:   "Manage resource instances",
	}
	cmd.AddCommand(newResourceAddCmd(app))
	cmd.AddCommand(newResourceListCmd(app))
	return cmd
}

func newResourceAddCmd(app *App) *cobra.Command {
	var name, graphID, id string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a resource instance to the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLocal("resource add"); err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(name) == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			r, err := st.AddResource(cmd.Context(), model.Resource{
				ResourceInstanceID: id,
				GraphID:            strings.TrimSpace(graphID),
				Name:               name,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": r})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&graphID, "graph", "", "Graph id the instance belongs to")
	cmd.Flags().StringVar(&id, "id", "", "Resource instance id (default: generated)")
	return cmd
}

func newResourceListCmd(app *App) *cobra.Command {
	var graphID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resource instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			rs, err := b.ListResources(cmd.Context(), graphID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rs})
		},
	}
	cmd.Flags().StringVar(&graphID, "graph", "", "Only list instances of this graph id")
	return cmd
}
