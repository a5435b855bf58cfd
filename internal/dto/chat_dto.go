package dto

import "ai-search-be/pkg/search"

type ModelSelection struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

type ChatMessage struct {
	MessageId string `json:"messageId"`
	ChatId    string `json:"chatId" validate:"required,max=64"`
	Content   string `json:"content"`
}

type ChatRequest struct {
	Message          ChatMessage    `json:"message"`
	OptimizationMode string         `json:"optimizationMode"`
	FocusMode        string         `json:"focusMode"`
	History          [][2]string    `json:"history"`
	Files            []string       `json:"files"`
	ChatModel        ModelSelection `json:"chatModel"`
	EmbeddingModel   ModelSelection `json:"embeddingModel"`
}

// PublishAssistantTurnMessage travels on the in-process ASSISTANT_TURN_COMPLETED topic.
type PublishAssistantTurnMessage struct {
	TurnId         string          `json:"turnId"`
	ConversationId string          `json:"conversationId"`
	Content        string          `json:"content"`
	Sources        []search.Result `json:"sources"`
	Partial        bool            `json:"partial"`
}
