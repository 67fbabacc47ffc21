// Package response writes the {status, message, data} envelope every API
// route answers with.
package response

import "github.com/gofiber/fiber/v3"

type SemanticResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	MessageOK                  = "ok"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageTooLarge            = "payload too large"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageInternalServerError = "internal server error"
	MessageServiceUnavailable  = "service unavailable"
	MessageError               = "error"
)

var defaultMessages = map[int]string{
	fiber.StatusOK:                    MessageOK,
	fiber.StatusCreated:               MessageOK,
	fiber.StatusAccepted:              MessageOK,
	fiber.StatusBadRequest:            MessageBadRequest,
	fiber.StatusUnauthorized:          MessageUnauthorized,
	fiber.StatusForbidden:             MessageForbidden,
	fiber.StatusNotFound:              MessageNotFound,
	fiber.StatusConflict:              MessageConflict,
	fiber.StatusRequestEntityTooLarge: MessageTooLarge,
	fiber.StatusUnprocessableEntity:   MessageUnprocessableEntity,
	fiber.StatusServiceUnavailable:    MessageServiceUnavailable,
}

func Success(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func Error(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

// write clamps out-of-range statuses to 500 and fills an empty message from
// the status.
func write(c fiber.Ctx, status int, message string, data any) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = DefaultMessage(status)
	}
	return c.Status(status).JSON(SemanticResponse{Status: status, Message: message, Data: data})
}

func DefaultMessage(status int) string {
	if msg, ok := defaultMessages[status]; ok {
		return msg
	}
	if status >= fiber.StatusInternalServerError {
		return MessageInternalServerError
	}
	return MessageError
}
