package entity

import (
	"time"

	"ai-search-be/pkg/search"
)

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Turn is one persisted message. Seq orders turns across the whole store
// and drives truncation.
type Turn struct {
	Seq            uint64
	TurnId         string
	ConversationId string
	Role           string
	Content        string
	Sources        []search.Result
	CreatedAt      time.Time
}
