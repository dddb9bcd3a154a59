package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/taskmate/internal/adapters/httpapi"
)

func newServeCmd(app *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = app.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := prepareServing(ctx, app); err != nil {
				return err
			}

			if !app.cfg.Log.Development {
				gin.SetMode(gin.ReleaseMode)
			}
			api := httpapi.NewServer(httpapi.Deps{
				Assistant: app.assistant,
				Tasks:     app.tasks,
				Confirm:   app.confirm,
				Sessions:  app.sessions,
				Meetings:  app.meetings,
				Metrics:   app.metrics.Handler(),
				Logger:    app.logger,
			})
			srv := &http.Server{
				Addr:         addr,
				Handler:      api.Handler(),
				ReadTimeout:  app.cfg.Server.ReadTimeout,
				WriteTimeout: app.cfg.Server.WriteTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				app.logger.Info("listening", zap.String("addr", addr), zap.String("model", app.assistant.ModelName()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve http: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
				defer cancel()
				app.logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			g.Go(func() error {
				return app.sessions.RunJanitor(gctx, app.cfg.Sessions.SweepInterval)
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")

	return cmd
}

// prepareServing seeds demo tasks when configured and drops sessions left
// idle past the timeout.
func prepareServing(ctx context.Context, app *app) error {
	if app.cfg.Tasks.SeedDemo {
		seeded, err := app.tasks.SeedDemo(ctx)
		if err != nil {
			return fmt.Errorf("seed demo tasks: %w", err)
		}
		if seeded > 0 {
			app.logger.Info("seeded demo tasks", zap.Int("count", seeded))
		}
	}

	if _, err := app.sessions.Cleanup(ctx); err != nil {
		return fmt.Errorf("startup session sweep: %w", err)
	}
	return nil
}
