package model

import (
	"encoding/json"
	"time"
)

// AIModel is a locally registered model endpoint, e.g. an Ollama instance or
// a hosted OpenAI/Anthropic model. APIKey is plaintext inside the process and
// encrypted at rest.
type AIModel struct {
	ID        string
	Name      string
	Provider  string // e.g., "ollama", "openai", "anthropic"
	ModelName string
	BaseURL   string
	APIKey    string `json:"-"`
	Enabled   bool
	Config    json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AIModelUpdate is a partial update of an AIModel. Nil fields are left unchanged.
type AIModelUpdate struct {
	Name      *string
	Provider  *string
	ModelName *string
	BaseURL   *string
	APIKey    *string
	Enabled   *bool
	Config    json.RawMessage
}

// Apply copies every non-nil field of u onto m.
func (u AIModelUpdate) Apply(m *AIModel) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Provider != nil {
		m.Provider = *u.Provider
	}
	if u.ModelName != nil {
		m.ModelName = *u.ModelName
	}
	if u.BaseURL != nil {
		m.BaseURL = *u.BaseURL
	}
	if u.APIKey != nil {
		m.APIKey = *u.APIKey
	}
	if u.Enabled != nil {
		m.Enabled = *u.Enabled
	}
	if u.Config != nil {
		m.Config = u.Config
	}
}
