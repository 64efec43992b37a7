package http

import (
	"encoding/json"
	"net/http"

	perr "tradein/internal/platform/errors"
	"tradein/internal/platform/logger"
	lumnet "tradein/internal/platform/net"
)

// Envelope is the uniform wire response for every endpoint
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes an envelope with the given status code
func JSON(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	env.StatusCode = status
	if env.Status == "" {
		env.Status = http.StatusText(status)
	}
	if env.RequestID == "" {
		env.RequestID = lumnet.RequestID(r.Context())
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("respond encode failed")
	}
}

// RespondOK writes a 200 envelope with data
func RespondOK(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusOK, Envelope{Data: data})
}

// RespondAccepted writes a 202 envelope with data
func RespondAccepted(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusAccepted, Envelope{Data: data})
}

// RespondNoContent writes a bare 204
func RespondNoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondErr maps a platform error to its wire envelope
func RespondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := perr.HTTPStatus(err)
	wire := perr.WireFrom(err)
	if status >= http.StatusInternalServerError {
		logger.C(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	JSON(w, r, status, Envelope{Code: wire.Code, Error: wire.Message})
}
