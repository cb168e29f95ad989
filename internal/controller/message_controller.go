package controller

import (
	"chart-coach-be/internal/dto"
	"chart-coach-be/internal/pkg/serverutils"
	"chart-coach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	DeleteAll(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type messageController struct {
	sessionService service.ISessionService
}

func NewMessageController(sessionService service.ISessionService) IMessageController {
	return &messageController{
		sessionService: sessionService,
	}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	s := r.Group("/sessions/:id/messages")
	s.Get("", c.List)
	s.Post("", c.Create)
	s.Delete("", c.DeleteAll)

	r.Delete("/messages/:id", c.Delete)
}

func (c *messageController) List(ctx *fiber.Ctx) error {
	sessionID, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	res, err := c.sessionService.ListMessages(ctx.UserContext(), sessionID)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *messageController) Create(ctx *fiber.Ctx) error {
	sessionID, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	var req dto.CreateMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.sessionService.CreateMessage(ctx.UserContext(), sessionID, &req)
	if err != nil {
		return err
	}
	return serverutils.JSON(ctx, fiber.StatusCreated, res)
}

func (c *messageController) DeleteAll(ctx *fiber.Ctx) error {
	sessionID, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	if err := c.sessionService.DeleteAllMessages(ctx.UserContext(), sessionID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse())
}

func (c *messageController) Delete(ctx *fiber.Ctx) error {
	id, err := pathID(ctx, "id", "message")
	if err != nil {
		return err
	}

	if err := c.sessionService.DeleteMessage(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse())
}
