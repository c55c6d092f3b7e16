package amqp

import (
	"encoding/json"
	"fmt"

	"budget/internal/core"
)

// EncodeEvent serializes a ledger event for publishing.
func EncodeEvent(ev core.LedgerEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent parses a delivery body and rejects events the worker cannot
// act on.
func DecodeEvent(data []byte) (*core.LedgerEvent, error) {
	var ev core.LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case core.EventSalarySet:
	case core.EventExpenseCreated, core.EventExpenseDeleted:
		if ev.Expense == nil || ev.Expense.ID == "" {
			return nil, fmt.Errorf("%s event without expense", ev.Type)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.UserID == "" {
		return nil, fmt.Errorf("%s event without user id", ev.Type)
	}
	return &ev, nil
}
