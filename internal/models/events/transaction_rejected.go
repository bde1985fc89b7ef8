package events

import "time"

type TransactionRejected struct {
	EventID    string    `json:"event_id"`
	RunID      string    `json:"run_id"`
	Type       string    `json:"type"`
	Reason     string    `json:"reason"`
	ClientID   uint16    `json:"client"`
	TxID       uint32    `json:"tx"`
	OccurredAt time.Time `json:"occurred_at"`
}
