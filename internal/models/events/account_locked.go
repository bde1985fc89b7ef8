package events

import "time"

type AccountLocked struct {
	EventID    string    `json:"event_id"`
	RunID      string    `json:"run_id"`
	ClientID   uint16    `json:"client"`
	TxID       uint32    `json:"tx"`
	OccurredAt time.Time `json:"occurred_at"`
}
