package dto

import (
	"time"

	"github.com/google/uuid"
)

// Sessions

type SessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateSessionRequest: an empty title gets a time-derived default.
type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type SessionStatusResponse struct {
	SessionId uuid.UUID `json:"sessionId"`
	State     string    `json:"state"`
}

// Messages

type MessageResponse struct {
	Id         uuid.UUID `json:"id"`
	SessionId  uuid.UUID `json:"sessionId"`
	Role       string    `json:"role"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	ImageUrl   string    `json:"imageUrl,omitempty"`
	ImageData  string    `json:"imageData,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	ScenarioId string    `json:"scenarioId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// CreateMessageRequest appends a raw message without running a coach turn.
type CreateMessageRequest struct {
	Role       string `json:"role" validate:"required,oneof=user coach"`
	Type       string `json:"type" validate:"required,oneof=text image analysis"`
	Content    string `json:"content"`
	ImageUrl   string `json:"imageUrl"`
	ImageData  string `json:"imageData"`
	Mode       string `json:"mode" validate:"omitempty,oneof=tldr full"`
	ScenarioId string `json:"scenarioId"`
}

// Coach turns

type SubmitTextRequest struct {
	Text string `json:"text" validate:"required"`
	Mode string `json:"mode" validate:"omitempty,oneof=tldr full"`
}

type SubmitScenarioRequest struct {
	ScenarioId string `json:"scenarioId" validate:"required"`
	Mode       string `json:"mode" validate:"omitempty,oneof=tldr full"`
}

type TurnResponse struct {
	UserMessage  *MessageResponse `json:"userMessage"`
	CoachMessage *MessageResponse `json:"coachMessage"`
}

type ScenarioResponse struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Upload & analysis

type UploadResponse struct {
	Url      string `json:"url"`
	Filename string `json:"filename"`
}

type AnalyzeRequest struct {
	ImageData string `json:"imageData" validate:"required"`
	Mode      string `json:"mode" validate:"omitempty,oneof=tldr full"`
}

type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}
