package types

import "time"

// AgentSummary is the list-level view of an agent.
type AgentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Agent is the full record returned by get and mutation operations.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Description  string    `json:"description,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary projects an Agent onto its list-level view.
func (a *Agent) Summary() AgentSummary {
	return AgentSummary{
		ID:        a.ID,
		Name:      a.Name,
		Status:    a.Status,
		UpdatedAt: a.UpdatedAt,
	}
}

// AgentVersion is an immutable snapshot of an agent.
type AgentVersion struct {
	AgentID     string    `json:"agentId"`
	Version     string    `json:"version"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AgentAlias is a routable name pointing at an agent version.
type AgentAlias struct {
	AgentID   string    `json:"agentId"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateAgentRequest is the payload for creating an agent.
type CreateAgentRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// UpdateAgentRequest is the payload for updating an agent. Nil fields are
// left unchanged.
type UpdateAgentRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}
