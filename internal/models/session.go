package models

// SessionState is the dispatcher state of one interactive session.
type SessionState string

const (
	StateAwaitingCredential SessionState = "awaiting_credential"
	StateReady              SessionState = "ready"
	StateDispatching        SessionState = "dispatching"
)

type SessionStatus struct {
	State SessionState `json:"state"`
}
