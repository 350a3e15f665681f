package presenters

import (
	"errors"

	"CookShare-Backend/domain"

	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

// PaginationMeta accompanies list responses.
type PaginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func SuccessResponse(c *fiber.Ctx, data any, code int, message string) error {
	return c.Status(code).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func PaginatedResponse(c *fiber.Ctx, data any, meta PaginationMeta, code int, message string) error {
	return c.Status(code).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// ErrorResponse renders validation failures as a field-keyed map and
// everything else as the error string.
func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	var detail any
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			detail = map[string]string{validationErr.Field: validationErr.Message}
		} else {
			detail = err.Error()
		}
	}
	return c.Status(code).JSON(Response{
		Status:  false,
		Message: message,
		Error:   detail,
	})
}
