package dto

import (
	"time"

	"ai-search-be/pkg/search"
)

type FileDetailsResponse struct {
	FileId string `json:"fileId"`
	Name   string `json:"name"`
}

type ConversationResponse struct {
	Id        string                `json:"id"`
	Title     string                `json:"title"`
	FocusMode string                `json:"focusMode"`
	Files     []FileDetailsResponse `json:"files"`
	CreatedAt time.Time             `json:"createdAt"`
}

type TurnResponse struct {
	MessageId string          `json:"messageId"`
	ChatId    string          `json:"chatId"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Sources   []search.Result `json:"sources,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ConversationDetailResponse struct {
	Chat     ConversationResponse `json:"chat"`
	Messages []TurnResponse       `json:"messages"`
}
