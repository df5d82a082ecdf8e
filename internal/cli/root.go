package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"resource-cards/internal/card"
	"resource-cards/internal/config"
	"resource-cards/internal/format"
	"resource-cards/internal/logger"
	"resource-cards/internal/model"
	"resource-cards/internal/remote"
	"resource-cards/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Server     string
	PrettyJSON bool
	Format     string

	cfg config.Config
	log *logger.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{log: logger.Nop()}

	cmd := &cobra.Command{
		Use:          "cards",
		Short:        "Resource cards: edit, save and relate resource instance cards",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Import a card and look at it
  cards card import card.json
  cards card show 6d0b2a0e-5b8c-4f5e-8d3e-0a1b2c3d4e5f

  # Direct card lookup (shortcut for: cards card show <cardid>)
  cards 6d0b2a0e-5b8c-4f5e-8d3e-0a1b2c3d4e5f

  # Serve the persistence API
  cards serve --addr 127.0.0.1:8085

  # Work against a running server instead of the local store
  cards --server http://127.0.0.1:8085 card show <cardid>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		log, err := logger.New(cfg.Log.Mode)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		app.log = log.With("cmd", cmd.CommandPath())
		if strings.TrimSpace(app.Dir) == "" {
			app.Dir = cfg.Store.Dir
		}
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		app.log.Sync()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CARDS_DIR", ""), "Path to the local store dir (default: store.dir from config)")
	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("CARDS_SERVER", ""), "Base URL of a running cards server; card and relationship commands use it instead of the local store")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CARDS_FORMAT", "json"), "Output format (json|edn|yaml)")

	cmd.AddCommand(newCardCmd(app))
	cmd.AddCommand(newRelatedCmd(app))
	cmd.AddCommand(newGraphCmd(app))
	cmd.AddCommand(newResourceCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newGalleryCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// backend is where cards and relationships live: the local store, or a
// running server when --server is set.
type backend interface {
	CardPayload(ctx context.Context, cardID string) (model.CardPayload, error)
	ListCards(ctx context.Context) ([]model.CardSummary, error)
	SaveCard(ctx context.Context, cardID string, body []byte) (json.RawMessage, error)
	ListResources(ctx context.Context, graphID string) ([]model.Resource, error)
	CreateRelationships(ctx context.Context, req model.RelationshipRequest) ([]model.Relationship, error)
	RelatedTo(ctx context.Context, resourceID string) ([]model.Relationship, error)
	Close() error
}

type remoteBackend struct {
	*remote.Client
}

func (r remoteBackend) CardPayload(ctx context.Context, cardID string) (model.CardPayload, error) {
	p, err := r.Card(ctx, cardID)
	if remote.IsNotFound(err) {
		return p, errNotFound("card", cardID)
	}
	return p, err
}

func (r remoteBackend) ListCards(ctx context.Context) ([]model.CardSummary, error) {
	return r.Cards(ctx)
}

func (r remoteBackend) ListResources(ctx context.Context, graphID string) ([]model.Resource, error) {
	all, err := r.Resources(ctx)
	if err != nil || graphID == "" {
		return all, err
	}
	out := []model.Resource{}
	for _, res := range all {
		if res.GraphID == graphID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r remoteBackend) Close() error { return nil }

func (app *App) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, app.Dir, app.log)
}

func (app *App) openBackend(ctx context.Context) (backend, error) {
	if strings.TrimSpace(app.Server) == "" {
		st, err := app.openStore(ctx)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	c, err := remote.New(remote.Config{
		BaseURL:     app.Server,
		CardPath:    app.cfg.URLs.Card,
		RelatedPath: app.cfg.URLs.RelatedResources,
	}, app.log)
	if err != nil {
		return nil, err
	}
	return remoteBackend{Client: c}, nil
}

// requireLocal rejects commands that only the local store supports.
func (app *App) requireLocal(what string) error {
	if strings.TrimSpace(app.Server) != "" {
		return fmt.Errorf("%s works on the local store only (drop --server)", what)
	}
	return nil
}

// loadCard builds the card model for cardID, saving back through b.
func loadCard(ctx context.Context, b backend, cardID string) (*card.Card, error) {
	p, err := b.CardPayload(ctx, strings.TrimSpace(cardID))
	if err != nil {
		return nil, err
	}
	return card.New(p, card.WithPersister(b))
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
