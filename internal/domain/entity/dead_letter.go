package entity

import "time"

// DeadLetter records a trigger invocation that exhausted its retries.
type DeadLetter struct {
	ID       string            `json:"id" firestore:"id"`
	Handler  string            `json:"handler" firestore:"handler"`
	EventID  string            `json:"event_id" firestore:"eventId"`
	Path     string            `json:"path" firestore:"path"`
	Params   map[string]string `json:"params" firestore:"params"`
	Before   string            `json:"before,omitempty" firestore:"before,omitempty"`
	After    string            `json:"after,omitempty" firestore:"after,omitempty"`
	Error    string            `json:"error" firestore:"error"`
	Attempts int               `json:"attempts" firestore:"attempts"`
	FailedAt time.Time         `json:"failed_at" firestore:"failedAt"`
}
