package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/handlers"
	"github.com/ekaya-inc/ekaya-db2/pkg/mcp"
	"github.com/ekaya-inc/ekaya-db2/pkg/middleware"
	"github.com/ekaya-inc/ekaya-db2/pkg/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server for the configured connection.

With the stdio transport the server speaks MCP on stdin/stdout and logs to
stderr. With the http transport it listens on bind_addr:port and serves
/mcp, /health and /ping.`,
		Example: `  # MCP over stdio (for desktop clients)
  ekaya-db2 serve

  # MCP over HTTP
  ekaya-db2 serve --transport http`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if transport != "" {
				a.cfg.MCP.Transport = transport
			}
			return a.withConnector(func(c *services.Connector) error {
				srv := mcp.NewConnectorServer(a.version, c, a.logger)
				if strings.EqualFold(a.cfg.MCP.Transport, "http") {
					return a.serveHTTP(cmd.Context(), srv, c)
				}
				a.logger.Info("Serving MCP over stdio", zap.String("connection_id", c.ID()))
				return srv.ServeStdio()
			})
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "override mcp.transport (stdio|http)")
	return cmd
}

func (a *app) serveHTTP(ctx context.Context, srv *mcp.Server, c *services.Connector) error {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(a.cfg, c, a.logger).RegisterRoutes(mux)
	handlers.NewMCPHandler(srv, a.logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.BindAddr, a.cfg.Port),
		Handler:           middleware.RequestLogger(a.logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server",
			zap.String("addr", httpServer.Addr),
			zap.String("version", a.version),
			zap.String("connection_id", c.ID()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
