package models

import "io"

// Submission is a response as received from the form, before validation.
type Submission struct {
	FullName         string
	EmailAddress     string
	Description      string
	Gender           string
	ProgrammingStack string
	Certificates     []*UploadedFile
}

type UploadedFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Field returns the raw form value answering the named question.
func (s *Submission) Field(name string) (string, bool) {
	switch name {
	case "full_name":
		return s.FullName, true
	case "email_address":
		return s.EmailAddress, true
	case "description":
		return s.Description, true
	case "gender":
		return s.Gender, true
	case "programming_stack":
		return s.ProgrammingStack, true
	default:
		return "", false
	}
}
