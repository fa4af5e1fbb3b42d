package main

import (
	"log"
	"os"
	"strconv"

	"survey/internal/container"
	"survey/internal/datastore"
	"survey/internal/models"
	"survey/internal/pkg/logging"
	"survey/internal/seed"
	"survey/internal/services"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/uptrace/bun"
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

func main() {
	vs, err := container.LoadEnvs()
	if err != nil {
		log.Fatal(err)
	}

	logging.SetDefault(logging.New(vs["API_MODE"], os.Stdout))
	injector := container.New(vs)

	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(injector),
			commandSeed(injector),
			commandConfigMigration(injector),
			commandConfigSet(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Description: "Create missing tables and indexes",
		Action: func(c *cli.Context) error {
			db, err := do.Invoke[*bun.DB](injector)
			if err != nil {
				return err
			}

			if err := datastore.Migrate(c.Context, db); err != nil {
				return err
			}

			logging.Default().Info("migration done")
			return nil
		},
	}
}

func commandSeed(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Description: "Insert the survey questions when none exist",
		Action: func(c *cli.Context) error {
			db, err := do.Invoke[*bun.DB](injector)
			if err != nil {
				return err
			}
			if err := datastore.Migrate(c.Context, db); err != nil {
				return err
			}

			serviceQuestion, err := do.Invoke[*services.ServiceQuestion](injector)
			if err != nil {
				return err
			}

			questions, err := seed.Questions()
			if err != nil {
				return err
			}

			seeded, err := serviceQuestion.SeedQuestions(c.Context, questions)
			if err != nil {
				return err
			}

			logging.Default().Info("seed done", "seeded", seeded)
			return nil
		},
	}
}

func commandConfigMigration(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs that are not set yet",
		Action: func(c *cli.Context) error {
			db, err := do.Invoke[*bun.DB](injector)
			if err != nil {
				return err
			}

			configs := []models.Config{
				{Key: services.CONFIG_SUBMISSION_RATE_LIMIT_PER_MINUTE, Value: strconv.Itoa(services.SUBMISSION_RATE_LIMIT_PER_MINUTE)},
				{Key: services.CONFIG_CRONJOB_TIME_CLEANUP, Value: services.CRONJOB_TIME_CLEANUP_DEFAULT},
				{Key: services.CONFIG_SURVEY_START_TIME, Value: ""},
				{Key: services.CONFIG_SURVEY_END_TIME, Value: ""},
			}

			for _, config := range configs {
				inserted, err := datastore.InsertConfigIfMissing(c.Context, db, &config)
				if err != nil {
					return err
				}
				logging.Default().Info("config", "key", config.Key, "inserted", inserted)
			}

			return nil
		},
	}
}

func commandConfigSet(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:        "config-set",
		Description: "Set a runtime config value",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Required: true},
			&cli.StringFlag{Name: "value"},
		},
		Action: func(c *cli.Context) error {
			serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
			if err != nil {
				return err
			}

			if err := serviceConfig.SetConfig(c.Context, c.String("key"), c.String("value")); err != nil {
				return err
			}

			logging.Default().Info("config set", "key", c.String("key"))
			return nil
		},
	}
}
