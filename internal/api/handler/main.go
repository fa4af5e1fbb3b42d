package handler

import (
	"net/http"

	"survey/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container   *do.Injector
	Mode        string
	Origins     []string
	AdminAPIKey string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	// rate limits key on the peer address, forwarded headers are client controlled
	r.IPExtractor = echo.ExtractIPDirect()
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())
	r.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, headerAPIKey},
		MaxAge:       60 * 60,
	}))

	r.GET("", Hello)

	// fail fast on wiring errors instead of on the first request
	for _, invoke := range []func(*do.Injector) error{
		invokeAs[*services.ServiceQuestion],
		invokeAs[*services.ServiceResponse],
		invokeAs[*services.ServiceCertificate],
	} {
		if err := invoke(cfg.Container); err != nil {
			return nil, err
		}
	}

	routesQuestions := r.Group("/api/questions")
	{
		q := groupQuestion{cfg.Container}
		routesQuestions.GET("", q.GetQuestions)

		resp := groupResponse{cfg.Container}
		routesQuestions.PUT("/responses", resp.Submit, middleware.BodyLimit("32M"), middlewareSurveyWindow(cfg.Container))
		routesQuestions.GET("/responses", resp.List, AuthnAdmin(cfg.AdminAPIKey))

		cert := groupCertificate{cfg.Container}
		routesQuestions.GET("/responses/certificates/:id", cert.Download, AuthnAdmin(cfg.AdminAPIKey))
	}

	return r, nil
}

func invokeAs[T any](container *do.Injector) error {
	_, err := do.Invoke[T](container)
	return err
}

func Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Survey API is running"})
}
