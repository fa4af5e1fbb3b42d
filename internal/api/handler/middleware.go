package handler

import (
	"crypto/subtle"
	"errors"
	"time"

	"survey/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

const headerAPIKey = "X-Api-Key"

// AuthnAdmin guards read-back endpoints with a shared api key. An empty key
// leaves them open.
func AuthnAdmin(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}

			header := c.Request().Header.Get(headerAPIKey)
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(apiKey)) != 1 {
				httpx.Abort(c, errorx.Wrap(errors.New("unauthorized"), errorx.Authn), -1)
				return nil
			}

			return next(c)
		}
	}
}

func middlewareSurveyWindow(container *do.Injector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			serviceResponse, err := do.Invoke[*services.ServiceResponse](container)
			if err != nil {
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			err = serviceResponse.CheckSubmissionWindow(c.Request().Context(), time.Now())
			if err != nil {
				httpx.Abort(c, classify(c, err), -1)
				return nil
			}

			return next(c)
		}
	}
}
