package serverutils

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const genericErrorMessage = "An error occurred while processing the request"

// HTTPError is an error that carries the status and the message shown to the client.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

func BadRequest(message string) *HTTPError {
	return NewHTTPError(fiber.StatusBadRequest, message)
}

func NotFound(message string) *HTTPError {
	return NewHTTPError(fiber.StatusNotFound, message)
}

func Internal(message string) *HTTPError {
	return NewHTTPError(fiber.StatusInternalServerError, message)
}

// ErrorHandler renders any error as {"message": ...}. Unknown errors become a
// generic 500 and are only logged.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var (
		httpErr     *HTTPError
		fiberErr    *fiber.Error
		validateErr validator.ValidationErrors
	)

	switch {
	case errors.As(err, &httpErr):
		return ctx.Status(httpErr.Code).JSON(fiber.Map{"message": httpErr.Message})
	case errors.As(err, &validateErr):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationMessage(validateErr)})
	case errors.As(err, &fiberErr):
		return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": genericErrorMessage})
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}

// ClientMessage returns the message a client may see for err, or false when
// err is internal.
func ClientMessage(err error) (string, bool) {
	var (
		httpErr     *HTTPError
		validateErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Message, true
	case errors.As(err, &validateErr):
		return validationMessage(validateErr), true
	}
	return "", false
}
