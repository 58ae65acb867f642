package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message senders
const (
	SenderCustomer  = "customer"
	SenderAutomated = "automated"
)

// OptimisticIDPrefix marks locally minted message ids. The engine
// echoes customer messages back under its own ids; optimistic copies
// are eliminated during merge once the authoritative twin arrives.
const OptimisticIDPrefix = "tmp-"

// Message is one entry in the simulated conversation transcript.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOptimisticMessage builds the customer message shown immediately
// on send, before the engine has confirmed it.
func NewOptimisticMessage(text string, sentAt time.Time) Message {
	return Message{
		ID:        OptimisticIDPrefix + uuid.NewString(),
		From:      SenderCustomer,
		Text:      text,
		CreatedAt: sentAt,
	}
}

// IsOptimistic reports whether the message id was minted locally.
func (m Message) IsOptimistic() bool {
	return strings.HasPrefix(m.ID, OptimisticIDPrefix)
}

// IsAutomated reports whether the message came from the automation.
func (m Message) IsAutomated() bool {
	return m.From == SenderAutomated
}
