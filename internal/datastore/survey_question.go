package datastore

import (
	"context"
	"database/sql"
	"errors"

	"survey/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSurveyQuestion(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.SurveyQuestion)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SurveyQuestion)(nil)).Index("index_questions_name").IfNotExists().Unique().Column("name").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateTableQuestionOption(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.QuestionOption)(nil)).IfNotExists().
		ForeignKey(`("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.QuestionOption)(nil)).Index("index_question_options_question_id").IfNotExists().Column("question_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CountSurveyQuestions(ctx context.Context, db bun.IDB) (int, error) {
	return db.NewSelect().Model((*models.SurveyQuestion)(nil)).Count(ctx)
}

func withOrderedOptions(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("id ASC")
}

func GetSurveyQuestions(ctx context.Context, db bun.IDB) ([]*models.SurveyQuestion, error) {
	var questions []*models.SurveyQuestion
	err := db.NewSelect().Model(&questions).Relation("Options", withOrderedOptions).OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetSurveyQuestionByName returns nil without error when the question does not exist.
func GetSurveyQuestionByName(ctx context.Context, db bun.IDB, name string) (*models.SurveyQuestion, error) {
	var question models.SurveyQuestion
	err := db.NewSelect().Model(&question).Relation("Options", withOrderedOptions).Where("name = ?", name).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// InsertSurveyQuestion inserts the question and then its options with the generated id.
func InsertSurveyQuestion(ctx context.Context, db bun.IDB, question *models.SurveyQuestion) error {
	_, err := db.NewInsert().Model(question).Returning("id").Exec(ctx)
	if err != nil {
		return err
	}

	if len(question.Options) == 0 {
		return nil
	}

	for _, option := range question.Options {
		option.QuestionID = question.ID
	}

	_, err = db.NewInsert().Model(&question.Options).Exec(ctx)
	return err
}
