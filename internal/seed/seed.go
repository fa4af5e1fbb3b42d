// Package seed holds the question set a fresh database is populated with.
package seed

import (
	_ "embed"

	"survey/internal/models"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed questions.toml
var questionsTOML []byte

type optionDef struct {
	Value string `toml:"value"`
	Text  string `toml:"text"`
}

type questionDef struct {
	Name            string      `toml:"name"`
	Type            string      `toml:"type"`
	Required        bool        `toml:"required"`
	Text            string      `toml:"text"`
	Description     string      `toml:"description"`
	MultipleChoice  bool        `toml:"multiple_choice"`
	Options         []optionDef `toml:"options"`
	FileFormat      string      `toml:"file_format"`
	MaxFileSize     int         `toml:"max_file_size"`
	MaxFileSizeUnit string      `toml:"max_file_size_unit"`
	MultipleFiles   bool        `toml:"multiple_files"`
}

type questionFile struct {
	Question []questionDef `toml:"question"`
}

func (d *questionDef) validate() error {
	if d.Name == "" {
		return goerr.New("question name is required")
	}
	if !models.QuestionType(d.Type).Valid() {
		return goerr.New("unknown question type", goerr.V("name", d.Name), goerr.V("type", d.Type))
	}
	if d.Text == "" {
		return goerr.New("question text is required", goerr.V("name", d.Name))
	}
	if models.QuestionType(d.Type) == models.QuestionChoice && len(d.Options) == 0 {
		return goerr.New("choice question needs options", goerr.V("name", d.Name))
	}
	if models.QuestionType(d.Type) == models.QuestionFile && d.FileFormat == "" {
		return goerr.New("file question needs a format", goerr.V("name", d.Name))
	}
	return nil
}

func (d *questionDef) toModel() *models.SurveyQuestion {
	q := &models.SurveyQuestion{
		Name:           d.Name,
		Type:           models.QuestionType(d.Type),
		Required:       d.Required,
		Text:           d.Text,
		Description:    &d.Description,
		MultipleChoice: d.MultipleChoice,
		MultipleFiles:  d.MultipleFiles,
	}

	if q.Type == models.QuestionFile {
		q.FileFormat = &d.FileFormat
		q.MaxFileSize = &d.MaxFileSize
		q.MaxFileSizeUnit = &d.MaxFileSizeUnit
	}

	for _, o := range d.Options {
		q.Options = append(q.Options, &models.QuestionOption{Value: o.Value, Text: o.Text})
	}

	return q
}

// Parse decodes a question set in the embedded TOML layout.
func Parse(data []byte) ([]*models.SurveyQuestion, error) {
	var file questionFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to decode question set")
	}

	seen := make(map[string]bool, len(file.Question))
	questions := make([]*models.SurveyQuestion, 0, len(file.Question))
	for i := range file.Question {
		def := &file.Question[i]
		if err := def.validate(); err != nil {
			return nil, err
		}
		if seen[def.Name] {
			return nil, goerr.New("duplicate question name", goerr.V("name", def.Name))
		}
		seen[def.Name] = true
		questions = append(questions, def.toModel())
	}

	return questions, nil
}

// Questions returns a fresh copy of the default question set.
func Questions() ([]*models.SurveyQuestion, error) {
	return Parse(questionsTOML)
}
