package llm

// Role identifies the sender of a conversation turn.
type Role string

const (
	// RoleUser marks messages sent by the querying user.
	RoleUser Role = "user"

	// RoleAssistant marks previous answers produced by the service.
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Turn is a single entry of the ordered chat history supplied with a query.
// Turns are immutable once created.
type Turn struct {
	// Role indicates who produced the turn.
	Role Role `json:"role"`

	// Content is the turn's text.
	Content string `json:"content"`
}
