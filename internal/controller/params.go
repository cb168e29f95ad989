package controller

import (
	"io"
	"mime/multipart"

	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// pathID parses a uuid path param. Malformed ids cannot exist, so they are not found.
func pathID(ctx *fiber.Ctx, param, what string) (uuid.UUID, error) {
	raw := ctx.Params(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NotFound(what, raw)
	}
	return id, nil
}

// parseBody decodes and validates a JSON body into req.
func parseBody(ctx *fiber.Ctx, req any) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation("invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

// formFile reads the multipart "file" field fully.
func formFile(ctx *fiber.Ctx) ([]byte, string, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return nil, "", apperror.Validation("file is required")
	}

	data, err := readFileHeader(header)
	if err != nil {
		return nil, "", apperror.Upload(err)
	}
	return data, header.Filename, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
