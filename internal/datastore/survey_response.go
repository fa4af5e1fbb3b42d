package datastore

import (
	"context"

	"survey/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSurveyResponse(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.SurveyResponse)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SurveyResponse)(nil)).Index("index_responses_email_address").IfNotExists().Column("email_address").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SurveyResponse)(nil)).Index("index_responses_date_responded").IfNotExists().Column("date_responded").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertSurveyResponse(ctx context.Context, db bun.IDB, response *models.SurveyResponse) error {
	_, err := db.NewInsert().Model(response).Returning("id").Exec(ctx)
	return err
}

func filterSurveyResponses(q *bun.SelectQuery, filter models.ResponseFilter) *bun.SelectQuery {
	if filter.EmailAddress != "" {
		q = q.Where("email_address = ?", filter.EmailAddress)
	}
	return q
}

func CountSurveyResponses(ctx context.Context, db bun.IDB, filter models.ResponseFilter) (int, error) {
	q := db.NewSelect().Model((*models.SurveyResponse)(nil))
	return filterSurveyResponses(q, filter).Count(ctx)
}

// GetSurveyResponsesPaging loads one page, newest first, with the certificates of the page in a single extra query.
func GetSurveyResponsesPaging(ctx context.Context, db bun.IDB, filter models.ResponseFilter, limit, offset int) ([]*models.SurveyResponse, error) {
	responses := []*models.SurveyResponse{}
	q := db.NewSelect().
		Model(&responses).
		Relation("Certificates", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("id ASC")
		})

	err := filterSurveyResponses(q, filter).
		OrderExpr("date_responded DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return responses, nil
}
