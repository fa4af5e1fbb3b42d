package models

import (
	"github.com/uptrace/bun"
)

type QuestionType string

const (
	QuestionShortText QuestionType = "short_text"
	QuestionLongText  QuestionType = "long_text"
	QuestionEmail     QuestionType = "email"
	QuestionChoice    QuestionType = "choice"
	QuestionFile      QuestionType = "file"
)

func (v QuestionType) Valid() bool {
	switch v {
	case QuestionShortText, QuestionLongText, QuestionEmail, QuestionChoice, QuestionFile:
		return true
	default:
		return false
	}
}

// db
type SurveyQuestion struct {
	bun.BaseModel   `bun:"table:questions"`
	ID              int64        `bun:"id,pk,autoincrement" json:"id"`
	Name            string       `bun:"name,type:varchar(100),notnull" json:"name"`
	Type            QuestionType `bun:"type,type:varchar(20),notnull" json:"type"`
	Required        bool         `bun:"required,notnull" json:"required"`
	Text            string       `bun:"text,type:varchar(500),notnull" json:"text"`
	Description     *string      `bun:"description,type:text" json:"description"`
	MultipleChoice  bool         `bun:"multiple_choice,notnull" json:"multiple_choice"`
	FileFormat      *string      `bun:"file_format,type:varchar(20)" json:"file_format"`
	MaxFileSize     *int         `bun:"max_file_size" json:"max_file_size"`
	MaxFileSizeUnit *string      `bun:"max_file_size_unit,type:varchar(5)" json:"max_file_size_unit"`
	MultipleFiles   bool         `bun:"multiple_files,notnull" json:"multiple_files"`

	Options []*QuestionOption `bun:"rel:has-many,join:id=question_id" json:"options,omitempty"`
}

type QuestionOption struct {
	bun.BaseModel `bun:"table:question_options"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	QuestionID    int64  `bun:"question_id,notnull" json:"question_id"`
	Value         string `bun:"value,type:varchar(100),notnull" json:"value"`
	Text          string `bun:"text,type:varchar(200),notnull" json:"text"`
}

// OptionValues returns the set of accepted values of a choice question.
func (q *SurveyQuestion) OptionValues() map[string]bool {
	values := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		values[o.Value] = true
	}
	return values
}

// MaxFileBytes converts the declared size limit to bytes, 0 meaning unlimited.
func (q *SurveyQuestion) MaxFileBytes() int64 {
	if q.MaxFileSize == nil || *q.MaxFileSize <= 0 {
		return 0
	}

	unit := ""
	if q.MaxFileSizeUnit != nil {
		unit = *q.MaxFileSizeUnit
	}

	size := int64(*q.MaxFileSize)
	switch unit {
	case "b":
		return size
	case "kb":
		return size << 10
	case "gb":
		return size << 30
	default:
		return size << 20
	}
}

// api
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

func YesNoOf(v bool) YesNo {
	if v {
		return Yes
	}
	return No
}

type QuestionOptionItem struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

type QuestionOptionList struct {
	Multiple YesNo                `json:"multiple"`
	Option   []QuestionOptionItem `json:"option"`
}

type FileProperties struct {
	Format          string `json:"format"`
	MaxFileSize     int    `json:"max_file_size"`
	MaxFileSizeUnit string `json:"max_file_size_unit"`
	Multiple        YesNo  `json:"multiple"`
}

type QuestionItem struct {
	Name           string              `json:"name"`
	Type           QuestionType        `json:"type"`
	Required       YesNo               `json:"required"`
	Text           string              `json:"text"`
	Description    string              `json:"description"`
	Options        *QuestionOptionList `json:"options,omitempty"`
	FileProperties *FileProperties     `json:"file_properties,omitempty"`
}

type QuestionList struct {
	Question []QuestionItem `json:"question"`
}
