package main

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"survey/internal/container"
	"survey/internal/datastore"
	"survey/internal/models"
	"survey/internal/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

const exportBatchSize = 100

var csvHeader = []string{
	"response_id",
	"full_name",
	"email_address",
	"description",
	"gender",
	"programming_stack",
	"certificates",
	"date_responded",
}

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

	logging.SetDefault(logging.New(vs["API_MODE"], os.Stderr))
	injector := container.New(vs)

	app := &cli.App{
		Name: "export",
		Commands: []*cli.Command{
			commandExport(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandExport(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write survey responses as csv",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "csv file path, stdout when empty",
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "only export responses of this email address",
			},
		},
		Action: func(c *cli.Context) error {
			db, err := do.InvokeNamed[*bun.DB](injector, "db-readonly")
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if path := c.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return goerr.Wrap(err, "failed to create output", goerr.V("path", path))
				}
				defer f.Close()
				w = f
			}

			count, err := exportResponses(c.Context, db, models.ResponseFilter{EmailAddress: c.String("email")}, w)
			if err != nil {
				return err
			}

			logging.Default().Info("export done", "responses", count)
			return nil
		},
	}
}

func exportResponses(ctx context.Context, db bun.IDB, filter models.ResponseFilter, w io.Writer) (int, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return 0, err
	}

	count := 0
	offset := 0
	for {
		responses, err := datastore.GetSurveyResponsesPaging(ctx, db, filter, exportBatchSize, offset)
		if err != nil {
			return count, goerr.Wrap(err, "failed to load responses", goerr.V("offset", offset))
		}
		if len(responses) == 0 {
			break
		}
		offset += exportBatchSize

		for _, r := range responses {
			if err := writer.Write(toRecord(r)); err != nil {
				return count, err
			}
			count++
		}
	}

	writer.Flush()
	return count, writer.Error()
}

func toRecord(r *models.SurveyResponse) []string {
	names := make([]string, 0, len(r.Certificates))
	for _, c := range r.Certificates {
		names = append(names, c.Filename)
	}

	return []string{
		strconv.FormatInt(r.ID, 10),
		r.FullName,
		r.EmailAddress,
		r.Description,
		r.Gender,
		r.ProgrammingStack,
		strings.Join(names, ";"),
		r.DateResponded.UTC().Format(models.DateRespondedLayout),
	}
}
