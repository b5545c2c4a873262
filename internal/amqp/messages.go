package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cashbook/internal/core"
)

// Actions carried by a LedgerChangedMessage.
const (
	ActionAppend = "append"
	ActionDelete = "delete"
	ActionSeed   = "seed"
)

// LedgerChangedMessage tells consumers that a table changed. It carries no
// rows: consumers reload the ledger, so redelivered or reordered messages
// are harmless.
type LedgerChangedMessage struct {
	ID        string    `json:"id"`
	Table     string    `json:"table"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage stamps a fresh id and time. Seed messages apply to
// both tables and leave Table empty.
func NewLedgerChangedMessage(table core.Table, action string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		ID:        uuid.NewString(),
		Table:     table.String(),
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

// Tables lists the tables the consumer must refresh.
func (m *LedgerChangedMessage) Tables() []core.Table {
	if m.Table == "" {
		return core.Tables()
	}
	if t, err := core.ParseTable(m.Table); err == nil {
		return []core.Table{t}
	}
	return nil
}

func (m *LedgerChangedMessage) Validate() error {
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("invalid message id %q: %w", m.ID, err)
	}
	switch m.Action {
	case ActionAppend, ActionDelete:
		if _, err := core.ParseTable(m.Table); err != nil {
			return fmt.Errorf("action %s: table %q: %w", m.Action, m.Table, err)
		}
	case ActionSeed:
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes and validates a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
