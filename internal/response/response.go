// Package response writes the {code, msg, data} envelope every API endpoint returns.
// The HTTP status always equals the envelope code.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform API response body
type Envelope struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// JSON writes an envelope with the given status
func JSON(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, Envelope{Code: code, Msg: msg, Data: data})
}

// OK writes a 200 envelope
func OK(c echo.Context, data interface{}) error {
	return JSON(c, http.StatusOK, "ok", data)
}

// Error writes an envelope without data
func Error(c echo.Context, code int, msg string) error {
	return JSON(c, code, msg, nil)
}

// Internal writes the generic 500 envelope. Details belong in the logs only.
func Internal(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "internal server error")
}

// HTTPErrorHandler renders errors that escape handlers (routing, binding, body limit) as envelopes
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if code < http.StatusInternalServerError {
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}
	}
	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}
	Error(c, code, msg)
}
