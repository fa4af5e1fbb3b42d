package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"survey/internal/api/handler"
	"survey/internal/container"
	"survey/internal/datastore"
	"survey/internal/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	vs, err := container.LoadEnvs()
	if err != nil {
		log.Fatal(err)
	}

	logging.SetDefault(logging.New(vs["API_MODE"], os.Stdout))
	injector := container.New(vs)

	app := &cli.App{
		Name: "api",
		Commands: []*cli.Command{
			commandServer(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServer(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "0.0.0.0:8080",
				Usage: "serve address",
			},
			&cli.BoolFlag{
				Name:  "migrate",
				Value: true,
				Usage: "create missing tables before serving",
			},
		},
		Action: func(c *cli.Context) error {
			logger := logging.Default()
			vs := do.MustInvokeNamed[map[string]string](injector, "envs")

			if c.Bool("migrate") {
				db, err := do.Invoke[*bun.DB](injector)
				if err != nil {
					return err
				}
				if err := datastore.Migrate(c.Context, db); err != nil {
					return err
				}
			}

			router, err := handler.New(&handler.Config{
				Container:   injector,
				Mode:        vs["API_MODE"],
				Origins:     strings.Split(vs["API_ORIGINS"], ","),
				AdminAPIKey: vs["ADMIN_API_KEY"],
			})
			if err != nil {
				logger.Error("failed to build router", "error", err)
				return err
			}

			srv := &http.Server{
				Addr:              c.String("addr"),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				logger.Info("listen and serve", "addr", c.String("addr"), "mode", vs["API_MODE"])
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server stopped", "error", err)
					return err
				}
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			return errWg.Wait()
		},
	}
}
