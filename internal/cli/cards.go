package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resource-cards/internal/card"
	"resource-cards/internal/format"
	"resource-cards/internal/mutate"
	"resource-cards/internal/publish"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "card",
		Aliases: []string{"cards"},
		Short:   "Show, import, export and edit cards",
	}

	cmd.AddCommand(newCardListCmd(app))
	cmd.AddCommand(newCardShowCmd(app))
	cmd.AddCommand(newCardImportCmd(app))
	cmd.AddCommand(newCardExportCmd(app))
	cmd.AddCommand(newCardRenameCmd(app))
	cmd.AddCommand(newCardMoveCmd(app))
	cmd.AddCommand(newCardAddChildCmd(app))
	cmd.AddCommand(newCardRemoveCmd(app))
	cmd.AddCommand(newCardMoveWidgetCmd(app))
	cmd.AddCommand(newCardDirtyCmd(app))
	cmd.AddCommand(newCardDeleteCmd(app))
	cmd.AddCommand(newCardPublishCmd(app))
	return cmd
}

func newCardListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List root cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			cards, err := b.ListCards(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cards})
		},
	}
}

func newCardShowCmd(app *App) *cobra.Command {
	var child string
	cmd := &cobra.Command{
		Use:   "show <cardid>",
		Short: "Show a card as it would be saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			root, err := loadCard(cmd.Context(), b, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := pickCard(root, child)
			if err != nil {
				return writeErr(cmd, err)
			}
			meta := map[string]any{
				"dirty":   root.Dirty(),
				"cards":   c.Cards().Len(),
				"widgets": c.Widgets().Len(),
			}
			if u := app.cfg.CardURL(root.ID()); u != "" {
				meta["url"] = u
			}
			return writeOut(cmd, app, map[string]any{"data": c.Serialize(), "meta": meta})
		},
	}
	cmd.Flags().StringVar(&child, "card", "", "Show a nested card of the tree instead of the root")
	return cmd
}

func newCardImportCmd(app *App) *cobra.Command {
	var cardID string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Save a card from a JSON or YAML file",
		Long: strings.TrimSpace(`
Save a serialized card (the shape ` + "`cards card export`" + ` writes) from a file.

Files ending in .yaml or .yml are read as YAML; anything else as JSON. Use "-"
to read JSON from stdin. Nested cards under "cards" are saved with the card and
replace whatever was stored under it before.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readCardFile(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(cardID) != "" {
				data["cardid"] = strings.TrimSpace(cardID)
			}
			id, _ := data["cardid"].(string)
			if strings.TrimSpace(id) == "" {
				return writeErr(cmd, errors.New("card import: missing cardid (set it in the file or pass --cardid)"))
			}
			body, err := json.Marshal(data)
			if err != nil {
				return writeErr(cmd, err)
			}

			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			saved, err := b.SaveCard(cmd.Context(), id, body)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": saved})
		},
	}
	cmd.Flags().StringVar(&cardID, "cardid", "", "Card id to save under (overrides the file's cardid)")
	return cmd
}

func readCardFile(cmd *cobra.Command, path string) (map[string]any, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var data map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("card import: decode %s: %w", path, err)
	}
	if data == nil {
		return nil, fmt.Errorf("card import: %s is empty", path)
	}
	return data, nil
}

func newCardExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <cardid>",
		Short: "Write a card in its serialized form (no envelope)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			root, err := loadCard(cmd.Context(), b, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(out) == "" {
				return writeOut(cmd, app, root.Serialize())
			}

			f, err := os.Create(out)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()
			if err := format.Write(f, root.Serialize(), app.Format, app.PrettyJSON); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cardid": root.ID(), "path": out}})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newCardRenameCmd(app *App) *cobra.Command {
	var child string
	cmd := &cobra.Command{
		Use:   "rename <cardid> <name>",
		Short: "Rename a card (or a nested card) and save the tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editAndSave(cmd, app, args[0], func(root *card.Card) (mutate.Result, error) {
				target := child
				if strings.TrimSpace(target) == "" {
					target = root.ID()
				}
				return mutate.SetCardName(root, target, args[1])
			})
		},
	}
	cmd.Flags().StringVar(&child, "card", "", "Rename this nested card instead of the root")
	return cmd
}

func newCardMoveCmd(app *App) *cobra.Command {
	var parent string
	var index int
	cmd := &cobra.Command{
		Use:   "move <cardid> <child-cardid>",
		Short: "Move a nested card to another parent or position and save the tree",
		Long: strings.TrimSpace(`
Move a nested card within the tree rooted at <cardid>.

Without --parent the card is reordered within its current parent. An --index
of -1 (the default) or past the end appends.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editAndSave(cmd, app, args[0], func(root *card.Card) (mutate.Result, error) {
				return mutate.MoveCard(root, args[1], parent, index)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "New parent card id (default: current parent)")
	cmd.Flags().IntVar(&index, "index", -1, "Position under the parent (-1 appends)")
	return cmd
}

func newCardAddChildCmd(app *App) *cobra.Command {
	var parent, name, childID string
	var index int
	cmd := &cobra.Command{
		Use:   "add-child <cardid>",
		Short: "Add an empty nested card and save the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			return editAndSave(cmd, app, args[0], func(root *card.Card) (mutate.Result, error) {
				p := parent
				if strings.TrimSpace(p) == "" {
					p = root.ID()
				}
				data := map[string]json.RawMessage{}
				data["name"], _ = json.Marshal(name)
				if strings.TrimSpace(childID) != "" {
					data["cardid"], _ = json.Marshal(strings.TrimSpace(childID))
				}
				return mutate.InsertCard(root, p, data, index)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent card id (default: the root)")
	cmd.Flags().StringVar(&name, "name", "", "Name of the new card")
	cmd.Flags().StringVar(&childID, "id", "", "Card id for the new card (default: generated)")
	cmd.Flags().IntVar(&index, "index", -1, "Position under the parent (-1 appends)")
	return cmd
}

func newCardRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <cardid> <child-cardid>",
		Short: "Remove a nested card from the tree and save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editAndSave(cmd, app, args[0], func(root *card.Card) (mutate.Result, error) {
				return mutate.RemoveCard(root, args[1])
			})
		},
	}
}

func newCardMoveWidgetCmd(app *App) *cobra.Command {
	var child string
	var from, to int
	cmd := &cobra.Command{
		Use:   "move-widget <cardid>",
		Short: "Reorder a card's widgets and save the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editAndSave(cmd, app, args[0], func(root *card.Card) (mutate.Result, error) {
				target := child
				if strings.TrimSpace(target) == "" {
					target = root.ID()
				}
				return mutate.MoveWidget(root, target, from, to)
			})
		},
	}
	cmd.Flags().StringVar(&child, "card", "", "Card whose widgets to reorder (default: the root)")
	cmd.Flags().IntVar(&from, "from", 0, "Current widget position")
	cmd.Flags().IntVar(&to, "to", 0, "New widget position")
	return cmd
}

// editAndSave loads the tree rooted at cardID, applies edit and saves the
// tree when it changed.
func editAndSave(cmd *cobra.Command, app *App, cardID string, edit func(root *card.Card) (mutate.Result, error)) error {
	ctx := cmd.Context()
	b, err := app.openBackend(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer b.Close()

	root, err := loadCard(ctx, b, cardID)
	if err != nil {
		return writeErr(cmd, err)
	}
	res, err := edit(root)
	if err != nil {
		return writeErr(cmd, err)
	}

	status := "unchanged"
	if res.Changed && root.Dirty() {
		if err := root.Save(ctx, func(r card.SaveResult) { status = string(r.Status) }); err != nil {
			app.log.Warn("card save failed", "cardid", root.ID(), "err", err)
			return writeErr(cmd, err)
		}
	}

	data := map[string]any{
		"cardid":  root.ID(),
		"changed": res.Changed,
		"status":  status,
	}
	if res.Card != nil {
		data["card"] = map[string]any{
			"cardid":    res.Card.ID(),
			"name":      res.Card.Name().Get(),
			"sortorder": res.Card.SortOrder().Get(),
		}
	}
	return writeOut(cmd, app, map[string]any{"data": data})
}

func newCardDirtyCmd(app *App) *cobra.Command {
	var child, name string
	cmd := &cobra.Command{
		Use:   "dirty <cardid>",
		Short: "Report whether a rename would leave unsaved changes, then reset",
		Long: strings.TrimSpace(`
Load a card, optionally apply --name to it (or to --card), and report whether
the tree differs from its last saved state. Nothing is saved: the card is reset
afterwards and the post-reset state is reported too.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			root, err := loadCard(cmd.Context(), b, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			changed := false
			if strings.TrimSpace(name) != "" {
				target := child
				if strings.TrimSpace(target) == "" {
					target = root.ID()
				}
				res, err := mutate.SetCardName(root, target, name)
				if err != nil {
					return writeErr(cmd, err)
				}
				changed = res.Changed
			}
			dirty := root.Dirty()
			if err := root.Reset(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"cardid":          root.ID(),
				"changed":         changed,
				"dirty":           dirty,
				"dirtyAfterReset": root.Dirty(),
			}})
		},
	}
	cmd.Flags().StringVar(&child, "card", "", "Apply --name to this nested card instead of the root")
	cmd.Flags().StringVar(&name, "name", "", "Name to try")
	return cmd
}

func newCardDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <cardid>",
		Short: "Delete a card and everything nested under it from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLocal("card delete"); err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			if err := st.DeleteCard(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cardid": args[0], "deleted": true}})
		},
	}
}

// pickCard returns root, or the nested card id when one is given.
func pickCard(root *card.Card, id string) (*card.Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return root, nil
	}
	c, _ := root.Find(id)
	if c == nil {
		return nil, errNotFound("card", id)
	}
	return c, nil
}

func newCardPublishCmd(app *App) *cobra.Command {
	var to string
	var overwrite, split, hidden bool
	cmd := &cobra.Command{
		Use:   "publish <cardid>",
		Short: "Write a card tree as markdown",
		Long: strings.TrimSpace(`
Write a card tree as markdown under <to>/cards.

By default the whole tree is one document (<cardid>.md). With --split every
card gets its own page under <to>/cards/<cardid>/ next to an index.md.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			root, err := loadCard(cmd.Context(), b, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteCard(root, to, publish.WriteOptions{
				IncludeHidden: hidden,
				Overwrite:     overwrite,
				Split:         split,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().BoolVar(&split, "split", false, "One page per card plus an index")
	cmd.Flags().BoolVar(&hidden, "include-hidden", false, "Include hidden widgets")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
