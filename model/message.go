package model

import "time"

// Role identifies who produced a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the conversation. Values are copied in and out of the
// Conversation, so a stored message never changes after Append.
type Message struct {
	Role      Role
	Text      string
	Source    string // Only set on assistant messages; empty means no attribution
	Timestamp time.Time
}

func NewUserMessage(text string) Message {
	return Message{
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func NewAssistantMessage(text, source string) Message {
	return Message{
		Role:      RoleAssistant,
		Text:      text,
		Source:    source,
		Timestamp: time.Now(),
	}
}
