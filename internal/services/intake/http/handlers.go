// Package http mounts the intake webhook routes
package http

import (
	stdhttp "net/http"

	"tradein/internal/adapters/slack"
	phttp "tradein/internal/platform/net/http"
	"tradein/internal/platform/net/http/bind"
	dom "tradein/internal/services/intake/domain"
)

// Handlers serves the chat event webhook
type Handlers struct {
	intake dom.IntakePort
}

// NewHandlers constructs the webhook handlers
func NewHandlers(intake dom.IntakePort) *Handlers {
	return &Handlers{intake: intake}
}

// Mount registers the webhook routes
func (h *Handlers) Mount(r phttp.Router) {
	r.Post("/webhook/chat", h.chatEvent)
}

// chatEvent handles the chat platform's event callbacks.
// url_verification echoes the challenge so the platform accepts the endpoint;
// event_callback runs the intake flow for plain user messages
func (h *Handlers) chatEvent(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	env, err := bind.ParseJSON[slack.EventEnvelope](r)
	if err != nil {
		phttp.RespondErr(w, r, err)
		return
	}

	switch env.Type {
	case slack.TypeURLVerification:
		phttp.RespondOK(w, r, map[string]string{"challenge": env.Challenge})
		return

	case slack.TypeEventCallback:
		if !env.Event.IsMessage() {
			phttp.RespondOK(w, r, map[string]string{"ignored": env.Event.Type})
			return
		}
		results, duplicate, err := h.intake.HandleMessage(r.Context(), env.EventID, env.Event.Text)
		if err != nil {
			phttp.RespondErr(w, r, err)
			return
		}
		phttp.RespondOK(w, r, map[string]any{
			"duplicate": duplicate,
			"results":   results,
		})
		return

	default:
		phttp.RespondOK(w, r, map[string]string{"ignored": env.Type})
	}
}
