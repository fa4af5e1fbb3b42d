package models

import (
	"time"

	"github.com/uptrace/bun"
)

const DateRespondedLayout = "2006-01-02 15:04:05"

// db
type SurveyResponse struct {
	bun.BaseModel    `bun:"table:responses"`
	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	FullName         string    `bun:"full_name,type:varchar(200),notnull" json:"full_name"`
	EmailAddress     string    `bun:"email_address,type:varchar(100),notnull" json:"email_address"`
	Description      string    `bun:"description,type:text,notnull" json:"description"`
	Gender           string    `bun:"gender,type:varchar(20),notnull" json:"gender"`
	ProgrammingStack string    `bun:"programming_stack,type:varchar(500),notnull" json:"programming_stack"`
	DateResponded    time.Time `bun:"date_responded,notnull" json:"date_responded"`

	Certificates []*Certificate `bun:"rel:has-many,join:id=response_id" json:"certificates,omitempty"`
}

type Certificate struct {
	bun.BaseModel `bun:"table:certificates"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	ResponseID    int64  `bun:"response_id,notnull" json:"response_id"`
	Filename      string `bun:"filename,type:varchar(255),notnull" json:"filename"`
	Filepath      string `bun:"filepath,type:varchar(500),notnull" json:"-"`
}

// api
type ResponseFilter struct {
	Page         int
	PageSize     int
	EmailAddress string
}

type SubmittedCertificates struct {
	Certificate []string `json:"certificate"`
}

type SubmittedResponse struct {
	FullName         string                `json:"full_name"`
	EmailAddress     string                `json:"email_address"`
	Description      string                `json:"description"`
	Gender           string                `json:"gender"`
	ProgrammingStack string                `json:"programming_stack"`
	Certificates     SubmittedCertificates `json:"certificates"`
	DateResponded    string                `json:"date_responded"`
}

type CertificateItem struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type CertificateItemList struct {
	Certificate []CertificateItem `json:"certificate"`
}

type ResponseItem struct {
	ResponseID       int64               `json:"response_id"`
	FullName         string              `json:"full_name"`
	EmailAddress     string              `json:"email_address"`
	Description      string              `json:"description"`
	Gender           string              `json:"gender"`
	ProgrammingStack string              `json:"programming_stack"`
	Certificates     CertificateItemList `json:"certificates"`
	DateResponded    string              `json:"date_responded"`
}

type ResponsePage struct {
	CurrentPage      int            `json:"current_page"`
	LastPage         int            `json:"last_page"`
	PageSize         int            `json:"page_size"`
	TotalCount       int            `json:"total_count"`
	QuestionResponse []ResponseItem `json:"question_response"`
}

func (r *SurveyResponse) ToItem() ResponseItem {
	certs := make([]CertificateItem, 0, len(r.Certificates))
	for _, c := range r.Certificates {
		certs = append(certs, CertificateItem{ID: c.ID, Text: c.Filename})
	}

	return ResponseItem{
		ResponseID:       r.ID,
		FullName:         r.FullName,
		EmailAddress:     r.EmailAddress,
		Description:      r.Description,
		Gender:           r.Gender,
		ProgrammingStack: r.ProgrammingStack,
		Certificates:     CertificateItemList{Certificate: certs},
		DateResponded:    r.DateResponded.UTC().Format(DateRespondedLayout),
	}
}
