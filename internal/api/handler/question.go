package handler

import (
	"net/http"

	"survey/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupQuestion struct {
	container *do.Injector
}

func (gr *groupQuestion) GetQuestions(c echo.Context) error {
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	list, err := serviceQuestion.GetQuestionList(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, classify(c, err))
	}

	return c.JSON(http.StatusOK, list)
}
