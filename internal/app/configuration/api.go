package configuration

import (
	"fmt"
	"io"
	"net/http"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/httpresponse"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/interactionlog"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/validation"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func ServeAPI(port int, validator *validation.Validator) *echo.Echo {
	server := NewAPI(validator)

	go func() {
		address := fmt.Sprintf(":%d", port)
		if err := server.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	return server
}

func NewAPI(validator *validation.Validator) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	a := &api{validator: validator}
	server.GET("/ready", a.readinessHandler)
	server.POST("/validations", a.validationsHandler)
	server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return server
}

type api struct {
	validator *validation.Validator
}

func (a *api) readinessHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (a *api) validationsHandler(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return httpresponse.Errorf(c, http.StatusBadRequest, "unable to read log. %s", err.Error())
	}

	l, err := interactionlog.Parse(data)
	if err != nil {
		return httpresponse.Errorf(c, http.StatusBadRequest, "unable to load log. %s", err.Error())
	}
	l.Source = c.QueryParam("source")

	log.Infof("validating log '%s' with %d records", l.TestName, len(l.Records))
	results := a.validator.ValidateLog(l)
	if results == nil {
		results = []validation.Result{}
	}

	return c.JSON(http.StatusOK, results)
}
