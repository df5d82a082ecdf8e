package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"resource-cards/internal/web"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cards persistence API from the local store",
		Long: strings.TrimSpace(`
Serve cards, datatypes, resources, relationships and graphs over HTTP.

Routes are mounted under the path of server.base_url (e.g. a base url of
http://host/api serves /api/cards/...), so ` + "`cards --server <base_url>`" + ` talks
to it without further configuration. Stops cleanly on SIGINT/SIGTERM.
`),
		Example: strings.TrimSpace(`
# Serve the default store on the configured address
cards serve

# Serve a specific store dir on another port
cards --dir ./fixtures serve --addr :9090
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = app.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			basePath, err := basePathOf(app.cfg.Server.BaseURL)
			if err != nil {
				return writeErr(cmd, err)
			}
			srv, err := web.NewServer(web.ServerConfig{
				Addr:        listenAddr,
				BasePath:    basePath,
				CORSOrigins: app.cfg.Server.CORSOrigins,
				Store:       st,
				Log:         app.log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", srv.Addr())
			if err != nil {
				return writeErr(cmd, err)
			}
			actual := "http://" + ln.Addr().String() + strings.TrimRight(basePath, "/")
			fmt.Fprintf(cmd.ErrOrStderr(), "cards server running at %s (dir=%s)\n", actual, app.Dir)
			app.log.Info("server started", "addr", ln.Addr().String(), "basePath", basePath)

			if err := serveUntilDone(ctx, ln, srv.Handler()); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (default: server.addr from config)")
	return cmd
}

// serveUntilDone serves h on ln until ctx ends, then shuts down gracefully.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler) error {
	hs := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// basePathOf returns the path component of the configured base url.
func basePathOf(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "/", nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("server.base_url: %w", err)
	}
	return "/" + strings.Trim(u.Path, "/"), nil
}
