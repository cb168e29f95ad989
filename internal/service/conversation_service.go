package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/coach/resolver"
	"chart-coach-be/pkg/coach/scenario"
	"chart-coach-be/pkg/events"
	"chart-coach-be/pkg/vision"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const conversationModule = "ConversationService"

var tracer = otel.Tracer("chart-coach-be/internal/service")

type SessionState string

const (
	StateIdle          SessionState = "idle"
	StateAwaitingReply SessionState = "awaiting_reply"
)

// Turn is one accepted submission: the user message and the coach reply to it.
type Turn struct {
	UserMessage  *entity.ChatMessage
	CoachMessage *entity.ChatMessage
}

// TurnError reports a turn whose user message was stored but got no coach reply.
type TurnError struct {
	UserMessage *entity.ChatMessage
	Err         error
}

func (e *TurnError) Error() string {
	return e.Err.Error()
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// IConversationService drives IDLE -> AWAITING_REPLY -> IDLE per session.
// Each submit blocks until the coach reply is stored or the turn failed.
type IConversationService interface {
	SubmitText(ctx context.Context, sessionID uuid.UUID, text string, mode entity.ResponseMode) (*Turn, error)
	SubmitImage(ctx context.Context, sessionID uuid.UUID, data []byte, filename string, mode entity.ResponseMode) (*Turn, error)
	SubmitScenario(ctx context.Context, sessionID uuid.UUID, scenarioID string, mode entity.ResponseMode) (*Turn, error)
	State(ctx context.Context, sessionID uuid.UUID) (SessionState, error)

	// Analyze runs the vision capability on a base64 or data-URL image without touching any session.
	Analyze(ctx context.Context, imageData string, mode entity.ResponseMode) (string, error)
	Scenarios() []scenario.Scenario
}

type conversationService struct {
	gateway   gateway.Gateway
	resolver  *resolver.Resolver
	catalog   *scenario.Catalog
	uploads   IUploadService
	guard     PendingGuard
	publisher IPublisherService
	logger    logger.ILogger
}

func NewConversationService(
	gw gateway.Gateway,
	res *resolver.Resolver,
	catalog *scenario.Catalog,
	uploads IUploadService,
	guard PendingGuard,
	publisher IPublisherService,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		gateway:   gw,
		resolver:  res,
		catalog:   catalog,
		uploads:   uploads,
		guard:     guard,
		publisher: publisher,
		logger:    log,
	}
}

func (cs *conversationService) SubmitText(ctx context.Context, sessionID uuid.UUID, text string, mode entity.ResponseMode) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("text must not be empty")
	}
	mode, err := resolver.NormalizeMode(mode)
	if err != nil {
		return nil, err
	}

	release, err := cs.guard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	userMsg, err := cs.appendUser(ctx, sessionID, gateway.NewMessage{
		Role:    entity.MessageRoleUser,
		Type:    entity.MessageTypeText,
		Content: text,
	})
	if err != nil {
		return nil, err
	}

	return cs.reply(ctx, userMsg, resolver.Request{Text: text, Mode: mode})
}

func (cs *conversationService) SubmitImage(ctx context.Context, sessionID uuid.UUID, data []byte, filename string, mode entity.ResponseMode) (*Turn, error) {
	mode, err := resolver.NormalizeMode(mode)
	if err != nil {
		return nil, err
	}

	release, err := cs.guard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Fail fast before storing the image for a session that does not exist.
	if _, err := cs.gateway.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	stored, err := cs.uploads.Save(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	userMsg, err := cs.appendUser(ctx, sessionID, gateway.NewMessage{
		Role:     entity.MessageRoleUser,
		Type:     entity.MessageTypeImage,
		Content:  filename,
		ImageUrl: stored.Url,
	})
	if err != nil {
		return nil, err
	}

	img := stored.Image
	return cs.reply(ctx, userMsg, resolver.Request{Image: &img, Mode: mode})
}

func (cs *conversationService) SubmitScenario(ctx context.Context, sessionID uuid.UUID, scenarioID string, mode entity.ResponseMode) (*Turn, error) {
	mode, err := resolver.NormalizeMode(mode)
	if err != nil {
		return nil, err
	}
	s, err := cs.catalog.Lookup(scenarioID)
	if err != nil {
		return nil, err
	}

	release, err := cs.guard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	userMsg, err := cs.appendUser(ctx, sessionID, gateway.NewMessage{
		Role:       entity.MessageRoleUser,
		Type:       entity.MessageTypeImage,
		Content:    s.Title,
		ScenarioId: s.ID,
	})
	if err != nil {
		return nil, err
	}

	return cs.reply(ctx, userMsg, resolver.Request{ScenarioID: s.ID, Mode: mode})
}

func (cs *conversationService) State(ctx context.Context, sessionID uuid.UUID) (SessionState, error) {
	if _, err := cs.gateway.GetSession(ctx, sessionID); err != nil {
		return "", err
	}
	pending, err := cs.guard.Pending(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if pending {
		return StateAwaitingReply, nil
	}
	return StateIdle, nil
}

func (cs *conversationService) Analyze(ctx context.Context, imageData string, mode entity.ResponseMode) (string, error) {
	img, err := vision.DecodeDataURL(imageData)
	if err != nil {
		return "", apperror.Validation("%s", err.Error())
	}

	res, err := cs.resolver.Resolve(ctx, resolver.Request{Image: &img, Mode: mode})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (cs *conversationService) Scenarios() []scenario.Scenario {
	return cs.catalog.All()
}

func (cs *conversationService) appendUser(ctx context.Context, sessionID uuid.UUID, payload gateway.NewMessage) (*entity.ChatMessage, error) {
	msg, err := cs.gateway.AppendMessage(ctx, sessionID, payload)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, cs.publisher, cs.logger, conversationModule,
		events.MessageCreated(sessionID, msg.Id, string(msg.Role), string(msg.Type), ""))
	return msg, nil
}

// reply resolves and stores the coach message. Called with the session's guard held.
func (cs *conversationService) reply(ctx context.Context, userMsg *entity.ChatMessage, req resolver.Request) (*Turn, error) {
	started := time.Now()

	resolveCtx, span := tracer.Start(ctx, "coach.resolve")
	span.SetAttributes(
		attribute.String("coach.session_id", userMsg.ChatSessionId.String()),
		attribute.String("coach.mode", string(req.Mode)),
		attribute.String("coach.scenario_id", req.ScenarioID),
		attribute.Bool("coach.image", req.Image != nil),
	)
	res, err := cs.resolver.Resolve(resolveCtx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err))
		span.End()
		return nil, cs.fail(ctx, userMsg, err)
	}
	span.SetAttributes(attribute.String("coach.source", string(res.Source)))
	span.End()

	// AppendMessage re-checks the session under its write lock, so a session
	// deleted while the reply was pending rejects the reply here.
	coachMsg, err := cs.gateway.AppendMessage(ctx, userMsg.ChatSessionId, gateway.NewMessage{
		Role:       entity.MessageRoleCoach,
		Type:       entity.MessageTypeAnalysis,
		Content:    res.Text,
		Mode:       res.Mode,
		ScenarioId: req.ScenarioID,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			cs.logger.Info(conversationModule, "Session deleted while awaiting reply, reply discarded", map[string]interface{}{
				"session_id": userMsg.ChatSessionId.String(),
			})
		}
		return nil, cs.fail(ctx, userMsg, err)
	}

	cs.logger.Info(conversationModule, "Coach reply stored", map[string]interface{}{
		"session_id": userMsg.ChatSessionId.String(),
		"source":     string(res.Source),
		"rule":       res.RuleName,
		"mode":       string(res.Mode),
		"duration":   time.Since(started).String(),
	})
	publishEvent(ctx, cs.publisher, cs.logger, conversationModule,
		events.MessageCreated(coachMsg.ChatSessionId, coachMsg.Id, string(coachMsg.Role), string(coachMsg.Type), string(coachMsg.Mode)))

	return &Turn{UserMessage: userMsg, CoachMessage: coachMsg}, nil
}

func (cs *conversationService) fail(ctx context.Context, userMsg *entity.ChatMessage, err error) error {
	kind := string(apperror.KindOf(err))
	if kind == "" {
		kind = "unknown"
	}

	cs.logger.Warn(conversationModule, "Turn failed", map[string]interface{}{
		"session_id":      userMsg.ChatSessionId.String(),
		"user_message_id": userMsg.Id.String(),
		"kind":            kind,
		"error":           err.Error(),
	})
	publishEvent(ctx, cs.publisher, cs.logger, conversationModule,
		events.TurnFailed(userMsg.ChatSessionId, userMsg.Id, kind, apperror.Message(err)))

	return &TurnError{UserMessage: userMsg, Err: err}
}
