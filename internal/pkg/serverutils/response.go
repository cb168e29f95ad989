package serverutils

import "github.com/gofiber/fiber/v2"

// ErrorBody is the failure envelope: {"error": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
}

// SuccessBody is returned by delete-style endpoints.
type SuccessBody struct {
	Success bool `json:"success"`
}

func ErrorResponse(message string) ErrorBody {
	return ErrorBody{Error: message}
}

func SuccessResponse() SuccessBody {
	return SuccessBody{Success: true}
}

// JSON writes data with the given status.
func JSON(ctx *fiber.Ctx, status int, data any) error {
	return ctx.Status(status).JSON(data)
}
