package models

import "time"

// AgentState describes what the remote voice agent is doing.
type AgentState string

const (
	AgentIdle     AgentState = "idle"
	AgentThinking AgentState = "thinking"
	AgentSpeaking AgentState = "speaking"
)

// AgentStatus is transient agent state, overwritten on every AGENT_STATE
// event. No history is kept beyond the notification queue.
type AgentStatus struct {
	State   AgentState `json:"state"`
	Message string     `json:"message,omitempty"`
	Tool    string     `json:"tool,omitempty"`
}

// ToolNotification is one entry in the bounded tool-activity queue shown
// next to the agent status.
type ToolNotification struct {
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
