package middleware

import (
	"errors"
	"log"

	"skill-hire/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// AppError is what handlers return for anything but success. Message is
// shown to clients for 4xx only; Cause is logged and never rendered.
type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

type ErrorMiddleware struct {
	logger *log.Logger
}

func NewErrorMiddleware(logger *log.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("http panic rid=%s path=%s err=%v", c.GetRespHeader(HeaderRequestID), c.Path(), r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		r := render(err)
		if r.status >= fiber.StatusInternalServerError {
			m.logger.Printf("http error rid=%s method=%s path=%s status=%d err=%v",
				c.GetRespHeader(HeaderRequestID), c.Method(), c.Path(), r.status, err)
		}
		return response.Error(c, r.status, r.message, r.data)
	}
}

type rendered struct {
	status  int
	message string
	data    any
}

// render decides what the client sees. Data on a 5xx is kept because
// handlers only set it for progress the caller needs, such as how many
// answers were recorded; the message is always generic.
func render(err error) rendered {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode > 0 {
		return renderStatus(appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code > 0 {
		return renderStatus(fiberErr.Code, fiberErr.Message, nil)
	}

	return rendered{status: fiber.StatusInternalServerError, message: response.MessageInternalServerError}
}

func renderStatus(status int, msg string, data any) rendered {
	switch {
	case status == fiber.StatusServiceUnavailable:
		return rendered{status: status, message: response.MessageServiceUnavailable, data: data}
	case status >= fiber.StatusInternalServerError:
		return rendered{status: fiber.StatusInternalServerError, message: response.MessageInternalServerError, data: data}
	case msg == "":
		// response.Error fills in the default text for the status
		return rendered{status: status, data: data}
	default:
		return rendered{status: status, message: msg, data: data}
	}
}
