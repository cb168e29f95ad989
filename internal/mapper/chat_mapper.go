package mapper

import (
	"chart-coach-be/internal/dto"
	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	return &model.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ChatMapper) ChatSessionToResponse(s *entity.ChatSession) *dto.SessionResponse {
	if s == nil {
		return nil
	}

	return &dto.SessionResponse{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ChatMapper) ChatSessionsToResponse(sessions []*entity.ChatSession) []*dto.SessionResponse {
	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, m.ChatSessionToResponse(s))
	}
	return res
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.SessionId,
		Role:          entity.MessageRole(msg.Role),
		Type:          entity.MessageType(msg.Type),
		Content:       msg.Content,
		ImageUrl:      msg.ImageUrl,
		ImageData:     msg.ImageData,
		Mode:          entity.ResponseMode(msg.Mode),
		ScenarioId:    msg.ScenarioId,
		Timestamp:     msg.Timestamp,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:         msg.Id,
		SessionId:  msg.ChatSessionId,
		Role:       string(msg.Role),
		Type:       string(msg.Type),
		Content:    msg.Content,
		ImageUrl:   msg.ImageUrl,
		ImageData:  msg.ImageData,
		Mode:       string(msg.Mode),
		ScenarioId: msg.ScenarioId,
		Timestamp:  msg.Timestamp,
	}
}

func (m *ChatMapper) ChatMessageToResponse(msg *entity.ChatMessage) *dto.MessageResponse {
	if msg == nil {
		return nil
	}

	return &dto.MessageResponse{
		Id:         msg.Id,
		SessionId:  msg.ChatSessionId,
		Role:       string(msg.Role),
		Type:       string(msg.Type),
		Content:    msg.Content,
		ImageUrl:   msg.ImageUrl,
		ImageData:  msg.ImageData,
		Mode:       string(msg.Mode),
		ScenarioId: msg.ScenarioId,
		Timestamp:  msg.Timestamp,
	}
}

func (m *ChatMapper) ChatMessagesToResponse(messages []*entity.ChatMessage) []*dto.MessageResponse {
	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, m.ChatMessageToResponse(msg))
	}
	return res
}
