package controller

import (
	"chart-coach-be/internal/dto"
	"chart-coach-be/internal/pkg/serverutils"
	"chart-coach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Patch(":id", c.Rename)
	h.Delete(":id", c.Delete)
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	res, err := c.sessionService.ListSessions(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}

	res, err := c.sessionService.CreateSession(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return serverutils.JSON(ctx, fiber.StatusCreated, res)
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	id, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	res, err := c.sessionService.GetSession(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *sessionController) Rename(ctx *fiber.Ctx) error {
	id, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	var req dto.RenameSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.sessionService.RenameSession(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	id, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	if err := c.sessionService.DeleteSession(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse())
}
