package controller

import (
	"chart-coach-be/internal/dto"
	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/mapper"
	"chart-coach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICoachController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	SubmitText(ctx *fiber.Ctx) error
	SubmitImage(ctx *fiber.Ctx) error
	SubmitScenario(ctx *fiber.Ctx) error
	Scenarios(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
}

type coachController struct {
	conversationService service.IConversationService
	uploadService       service.IUploadService
	mapper              *mapper.ChatMapper
}

func NewCoachController(conversationService service.IConversationService, uploadService service.IUploadService) ICoachController {
	return &coachController{
		conversationService: conversationService,
		uploadService:       uploadService,
		mapper:              mapper.NewChatMapper(),
	}
}

func (c *coachController) RegisterRoutes(r fiber.Router) {
	s := r.Group("/sessions/:id")
	s.Get("status", c.Status)
	s.Post("turns/text", c.SubmitText)
	s.Post("turns/image", c.SubmitImage)
	s.Post("turns/scenario", c.SubmitScenario)

	r.Get("/scenarios", c.Scenarios)
	r.Post("/upload", c.Upload)
	r.Post("/analyze", c.Analyze)
}

func (c *coachController) Status(ctx *fiber.Ctx) error {
	sessionID, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	state, err := c.conversationService.State(ctx.UserContext(), sessionID)
	if err != nil {
		return err
	}
	return ctx.JSON(dto.SessionStatusResponse{SessionId: sessionID, State: string(state)})
}

func (c *coachController) SubmitText(ctx *fiber.Ctx) error {
	sessionID, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	var req dto.SubmitTextRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	turn, err := c.conversationService.SubmitText(ctx.UserContext(), sessionID, req.Text, entity.ResponseMode(req.Mode))
	if err != nil {
		return err
	}
	return ctx.JSON(c.turnResponse(turn))
}

func (c *coachController) SubmitImage(ctx *fiber.Ctx) error {
	sessionID, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	data, filename, err := formFile(ctx)
	if err != nil {
		return err
	}

	turn, err := c.conversationService.SubmitImage(ctx.UserContext(), sessionID, data, filename, entity.ResponseMode(ctx.FormValue("mode")))
	if err != nil {
		return err
	}
	return ctx.JSON(c.turnResponse(turn))
}

func (c *coachController) SubmitScenario(ctx *fiber.Ctx) error {
	sessionID, err := pathID(ctx, "id", "session")
	if err != nil {
		return err
	}

	var req dto.SubmitScenarioRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	turn, err := c.conversationService.SubmitScenario(ctx.UserContext(), sessionID, req.ScenarioId, entity.ResponseMode(req.Mode))
	if err != nil {
		return err
	}
	return ctx.JSON(c.turnResponse(turn))
}

func (c *coachController) Scenarios(ctx *fiber.Ctx) error {
	scenarios := c.conversationService.Scenarios()
	res := make([]dto.ScenarioResponse, 0, len(scenarios))
	for _, s := range scenarios {
		res = append(res, dto.ScenarioResponse{Id: s.ID, Title: s.Title, Description: s.Description})
	}
	return ctx.JSON(res)
}

func (c *coachController) Upload(ctx *fiber.Ctx) error {
	data, filename, err := formFile(ctx)
	if err != nil {
		return err
	}

	stored, err := c.uploadService.Save(ctx.UserContext(), data, filename)
	if err != nil {
		return err
	}
	return ctx.JSON(dto.UploadResponse{Url: stored.Url, Filename: stored.Filename})
}

func (c *coachController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	analysis, err := c.conversationService.Analyze(ctx.UserContext(), req.ImageData, entity.ResponseMode(req.Mode))
	if err != nil {
		return err
	}
	return ctx.JSON(dto.AnalyzeResponse{Analysis: analysis})
}

func (c *coachController) turnResponse(turn *service.Turn) dto.TurnResponse {
	return dto.TurnResponse{
		UserMessage:  c.mapper.ChatMessageToResponse(turn.UserMessage),
		CoachMessage: c.mapper.ChatMessageToResponse(turn.CoachMessage),
	}
}
