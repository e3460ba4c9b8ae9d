package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"tripdesk/internal/ports"
)

// Change operations.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// RecordChange announces that one record, or a whole collection when ID is
// empty, changed. The worker reloads the collection from storage, so the
// message carries no record body.
type RecordChange struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id,omitempty"`
	Op         string    `json:"op"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordChange(collection, id, op string) *RecordChange {
	return &RecordChange{
		Collection: collection,
		ID:         id,
		Op:         op,
		Timestamp:  time.Now().UTC(),
	}
}

// Validate rejects unknown collections and operations.
func (m *RecordChange) Validate() error {
	switch m.Collection {
	case ports.CollectionInvoices, ports.CollectionExpenses, ports.CollectionSettings:
	default:
		return fmt.Errorf("unknown collection %q", m.Collection)
	}
	switch m.Op {
	case OpUpsert:
	case OpDelete:
		if m.ID == "" {
			return fmt.Errorf("delete without record id")
		}
	default:
		return fmt.Errorf("unknown operation %q", m.Op)
	}
	return nil
}

func (m *RecordChange) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeFromJSON decodes and validates a message body.
func RecordChangeFromJSON(data []byte) (*RecordChange, error) {
	var msg RecordChange
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
