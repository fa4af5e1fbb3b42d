package handler

import (
	"errors"

	"survey/internal/pkg/logging"
	"survey/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/labstack/echo/v4"
	"github.com/m-mizutani/goerr/v2"
)

var (
	errCertificateNotFound = errors.New("Certificate not found")
	errTooManySubmissions  = errors.New("too many submissions, try again later")
	errSurveyNotStarted    = errors.New("survey not started yet")
	errSurveyEnded         = errors.New("survey ended")
	errInternal            = errors.New("internal server error")
)

// classify maps service errors to toolkit kinds with client safe messages.
// Anything unexpected is logged with its values and hidden behind a 500.
func classify(c echo.Context, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorx.Wrap(errors.New(verr.Message), errorx.Invalid)
	case errors.Is(err, services.ErrCertificateNotFound):
		return errorx.Wrap(errCertificateNotFound, errorx.NotExist)
	case errors.Is(err, services.ErrRateLimited):
		return errorx.Wrap(errTooManySubmissions, errorx.RateLimiting)
	case errors.Is(err, services.ErrSurveyNotStarted):
		return errorx.Wrap(errSurveyNotStarted, errorx.Authz)
	case errors.Is(err, services.ErrSurveyEnded):
		return errorx.Wrap(errSurveyEnded, errorx.Authz)
	}

	attrs := []any{"method", c.Request().Method, "uri", c.Request().RequestURI, "error", err.Error()}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values())
	}
	logging.From(c.Request().Context()).Error("request failed", attrs...)

	return errorx.Wrap(errInternal, errorx.Service)
}
