package httpresponse

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type APIError struct {
	ErrorMessage string `json:"error_message"`
}

// Errorf logs the message and sends it to the client as an APIError body.
func Errorf(c echo.Context, status int, format string, a ...interface{}) error {
	message := fmt.Sprintf(format, a...)

	entry := log.WithFields(log.Fields{
		"status": status,
		"path":   c.Request().URL.Path,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}

	return c.JSON(status, &APIError{ErrorMessage: message})
}
