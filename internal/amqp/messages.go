package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a change to a user's ledger.
type EventType string

const (
	ExpenseCreated EventType = "expense.created"
	ExpenseUpdated EventType = "expense.updated"
	ExpenseDeleted EventType = "expense.deleted"
	IncomeUpserted EventType = "income.upserted"
)

// LedgerEvent tells consumers which user and which month changed. Consumers re-read the
// data they need instead of trusting a payload.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"userId"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	ExpenseID string    `json:"expenseId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(t EventType, userID string, year, month int) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		UserID:    userID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now().UTC(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted, IncomeUpserted:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID == "" || e.Month < 1 || e.Month > 12 {
		return nil, fmt.Errorf("incomplete %s event", e.Type)
	}
	return &e, nil
}
