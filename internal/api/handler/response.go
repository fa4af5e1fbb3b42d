package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"survey/internal/models"
	"survey/internal/pkg"
	"survey/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupResponse struct {
	container *do.Injector
}

func (gr *groupResponse) Submit(c echo.Context) error {
	serviceResponse, err := do.Invoke[*services.ServiceResponse](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid multipart form"), errorx.Invalid))
	}

	submission := &models.Submission{
		FullName:         firstValue(form, "full_name"),
		EmailAddress:     firstValue(form, "email_address"),
		Description:      firstValue(form, "description"),
		Gender:           firstValue(form, "gender"),
		ProgrammingStack: firstValue(form, "programming_stack"),
	}
	for _, fh := range form.File[services.FILE_QUESTION_NAME] {
		submission.Certificates = append(submission.Certificates, &models.UploadedFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	response, err := serviceResponse.Submit(c.Request().Context(), c.RealIP(), submission)
	if err != nil {
		return httpx.RestAbort(c, nil, classify(c, err))
	}

	return c.JSON(http.StatusOK, response)
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func (gr *groupResponse) List(c echo.Context) error {
	serviceResponse, err := do.Invoke[*services.ServiceResponse](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	page, err := intQueryParam(c, "page", pkg.DefaultPage)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	pageSize, err := intQueryParam(c, "page_size", pkg.DefaultPageSize)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceResponse.ListResponses(c.Request().Context(), models.ResponseFilter{
		Page:         page,
		PageSize:     pageSize,
		EmailAddress: c.QueryParam("email_address"),
	})
	if err != nil {
		return httpx.RestAbort(c, nil, classify(c, err))
	}

	return c.JSON(http.StatusOK, result)
}

func intQueryParam(c echo.Context, name string, defaultValue int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errorx.Wrap(errors.New(name+" must be an integer"), errorx.Invalid)
	}
	return v, nil
}
