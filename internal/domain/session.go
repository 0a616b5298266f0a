package domain

import "time"

// State enumerates the conversation states a user can be in.
type State string

const (
	StateWelcome           State = "WELCOME"
	StateMainMenu          State = "MAIN_MENU"
	StateSpecialistName    State = "SPECIALIST_FORM_NAME"
	StateSpecialistContact State = "SPECIALIST_FORM_CONTACT"
	StateSpecialistIssue   State = "SPECIALIST_FORM_ISSUE"
	StateSpecialistConfirm State = "SPECIALIST_FORM_CONFIRM"
	StateAIChat            State = "AI_CHAT"
	StateFAQ               State = "FAQ"
)

// Context field keys for the specialist form.
const (
	FieldName    = "name"
	FieldContact = "contact"
	FieldIssue   = "issue"
)

// Turn roles in the AI conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxHistoryTurns bounds the AI turn history kept in a session context.
// Oldest turns are evicted first when the bound is exceeded.
const MaxHistoryTurns = 20

// Turn is a single exchange entry in the AI conversation history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Context accumulates multi-step form answers and the AI turn history.
type Context struct {
	Fields  map[string]string `json:"fields,omitempty"`
	History []Turn            `json:"history,omitempty"`
}

// NewContext returns an empty context.
func NewContext() Context {
	return Context{}
}

// Clone returns a deep copy so transitions can mutate freely.
func (c Context) Clone() Context {
	out := Context{}
	if len(c.Fields) > 0 {
		out.Fields = make(map[string]string, len(c.Fields))
		for k, v := range c.Fields {
			out.Fields[k] = v
		}
	}
	if len(c.History) > 0 {
		out.History = make([]Turn, len(c.History))
		copy(out.History, c.History)
	}
	return out
}

// SetField records a completed form answer.
func (c *Context) SetField(key, value string) {
	if c.Fields == nil {
		c.Fields = make(map[string]string)
	}
	c.Fields[key] = value
}

// Field returns a collected form answer, empty when absent.
func (c Context) Field(key string) string {
	return c.Fields[key]
}

// ClearFields discards in-progress form answers, keeping the AI history.
func (c *Context) ClearFields() {
	c.Fields = nil
}

// AppendTurn adds a history entry, evicting the oldest past MaxHistoryTurns.
func (c *Context) AppendTurn(role, text string) {
	c.History = append(c.History, Turn{Role: role, Text: text})
	if len(c.History) > MaxHistoryTurns {
		c.History = c.History[len(c.History)-MaxHistoryTurns:]
	}
}

// Session holds per-user conversation state, keyed by the external user id.
type Session struct {
	UserID    string    `json:"user_id"`
	State     State     `json:"state"`
	Context   Context   `json:"context"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns the initial session for a first-time user.
func NewSession(userID string) *Session {
	return &Session{
		UserID:  userID,
		State:   StateWelcome,
		Context: NewContext(),
	}
}
