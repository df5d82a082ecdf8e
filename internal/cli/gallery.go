package cli

import (
	"strings"

	"resource-cards/internal/tui"

	"github.com/spf13/cobra"
)

func newGalleryCmd(app *App) *cobra.Command {
	var noAnimate bool

	cmd := &cobra.Command{
		Use:   "gallery <cardid>",
		Short: "Browse and edit a card tree in the terminal",
		Long: strings.TrimSpace(`
Open the interactive gallery for a card: its nested cards are shown as a strip
of thumbnails that pans left and right.

Keys: left/right pan, tab/shift+tab select, e rename, s save, r reset,
? help, q quit.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := app.openBackend(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			root, err := loadCard(ctx, b, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			opts := tui.Options{
				Duration:       app.cfg.Gallery.Duration,
				ScrollDistance: app.cfg.Gallery.ScrollDistance,
			}
			if noAnimate {
				opts.Duration = 0
			}
			if err := tui.Run(ctx, root, opts); err != nil {
				return writeErr(cmd, err)
			}
			if root.Dirty() {
				app.log.Warn("gallery closed with unsaved changes", "cardid", root.ID())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noAnimate, "no-animate", false, "Jump instead of animating pans")
	return cmd
}
