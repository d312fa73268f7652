package models

import "time"

// ChatStatus represents the lifecycle flag of a conversation
type ChatStatus string

const (
	ChatOpen     ChatStatus = "open"
	ChatClosed   ChatStatus = "closed"
	ChatArchived ChatStatus = "archived"
)

// Valid reports whether s is a known chat status.
func (s ChatStatus) Valid() bool {
	switch s {
	case ChatOpen, ChatClosed, ChatArchived:
		return true
	}
	return false
}

// MessageSender tags who wrote a chat message
type MessageSender string

const (
	SenderStudent MessageSender = "student"
	SenderBot     MessageSender = "bot"
)

// Valid reports whether s is a known sender.
func (s MessageSender) Valid() bool {
	return s == SenderStudent || s == SenderBot
}

// Chat is a conversation owned by exactly one student
type Chat struct {
	ID         int64      `json:"id" db:"id"`
	StudentID  int64      `json:"student_id" db:"student_id"`
	Title      string     `json:"title" db:"title"`
	MessageIDs []int64    `json:"message_ids" db:"message_ids"` // Insertion order
	Favorite   bool       `json:"favorite" db:"favorite"`
	Saved      bool       `json:"saved" db:"saved"`
	Status     ChatStatus `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`

	Messages []*ChatMessage `json:"messages,omitempty"` // Populated on read, ordered as MessageIDs
}

// ChatMessage belongs to exactly one chat; MessageID is sequential across all chats
type ChatMessage struct {
	ID          int64         `json:"id" db:"id"`
	MessageID   int64         `json:"message_id" db:"message_id"`
	ChatID      int64         `json:"chat_id" db:"chat_id"`
	From        MessageSender `json:"from" db:"sender"`
	MessageText string        `json:"message_text" db:"message_text"`
	CreatedAt   time.Time     `json:"timestamp" db:"created_at"`
}

// OrderMessages arranges loaded messages in the chat's recorded insertion order.
// Messages whose id is not referenced by the chat are appended last.
func (c *Chat) OrderMessages(messages []*ChatMessage) {
	byID := make(map[int64]*ChatMessage, len(messages))
	for _, m := range messages {
		byID[m.MessageID] = m
	}
	ordered := make([]*ChatMessage, 0, len(messages))
	for _, id := range c.MessageIDs {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
			delete(byID, id)
		}
	}
	for _, m := range messages {
		if _, left := byID[m.MessageID]; left {
			ordered = append(ordered, m)
		}
	}
	c.Messages = ordered
}
