package model

import "slices"

// Conversation is the append-only transcript of a session. Insertion order is
// conversation order and render order.
//
// It is owned by a single session and mutated only from the UI update loop,
// so it carries no locking.
type Conversation struct {
	messages []Message
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds msg to the end of the transcript.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// All returns a snapshot of the transcript. Changing the returned slice does
// not affect the conversation.
func (c *Conversation) All() []Message {
	return slices.Clone(c.messages)
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// LastAssistant returns the newest assistant message, if any.
func (c *Conversation) LastAssistant() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i], true
		}
	}
	return Message{}, false
}
