package amqp

import (
	"encoding/json"
	"time"

	"pondo/internal/core"
)

// ActivityMessage is the lightweight event published after a ledger mutation
// commits. It carries only the identifiers; the worker re-reads the row from
// the database, so a stale message after a later update is harmless.
type ActivityMessage struct {
	Op        string         `json:"op"` // create, update, delete
	Kind      core.EntryKind `json:"kind"`
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewActivityMessage creates an activity message stamped with the current
// time.
func NewActivityMessage(op string, kind core.EntryKind, id int64, username string) *ActivityMessage {
	return &ActivityMessage{
		Op:        op,
		Kind:      kind,
		ID:        id,
		Username:  username,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
