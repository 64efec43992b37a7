package slack

// Event API payload types for the intake webhook.
// Only the fields the handler reads are declared; the platforms add
// fields freely so decoding must tolerate unknowns

// EventEnvelope is the outer webhook payload
type EventEnvelope struct {
	Type      string `json:"type" validate:"required"`
	Token     string `json:"token,omitempty"`
	Challenge string `json:"challenge,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	Event     Event  `json:"event,omitempty"`
}

// Event is the inner message event
type Event struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	Channel string `json:"channel,omitempty"`
	User    string `json:"user,omitempty"`
	BotID   string `json:"bot_id,omitempty"`
	Text    string `json:"text,omitempty"`
	TS      string `json:"ts,omitempty"`
}

// envelope types
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
)

// IsMessage reports whether the event is a plain user message worth parsing.
// Bot posts and edited/deleted subtypes are ignored so the bot never loops
// on its own replies
func (e Event) IsMessage() bool {
	return e.Type == "message" && e.Subtype == "" && e.BotID == ""
}
