package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"survey/internal/container"
	"survey/internal/pkg/logging"
	"survey/internal/services"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

type CronJob interface {
	Start(ctx context.Context, cronRunner *cron.Cron) error
}

func main() {
	vs, err := container.LoadEnvs()
	if err != nil {
		log.Fatal(err)
	}

	logging.SetDefault(logging.New(vs["API_MODE"], os.Stdout))
	injector := container.New(vs)

	app := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCleanup(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCleanup(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "remove uploaded files no certificate refers to",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "run a single pass and exit",
			},
		},
		Action: func(c *cli.Context) error {
			serviceCertificate, err := do.Invoke[*services.ServiceCertificate](injector)
			if err != nil {
				return err
			}
			serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
			if err != nil {
				return err
			}

			job := NewCleanupJob(serviceCertificate, serviceConfig)
			if c.Bool("once") {
				_, err := job.Run(c.Context)
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cronRunner := cron.New()
			var cronJob CronJob = job
			if err := cronJob.Start(ctx, cronRunner); err != nil {
				return err
			}

			logging.Default().Info("start cronjob")
			cronRunner.Start()
			<-ctx.Done()
			<-cronRunner.Stop().Done()
			logging.Default().Info("cronjob stopped")
			return nil
		},
	}
}
