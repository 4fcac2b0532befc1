package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Code classifies a failed request for API clients.
type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeUnavailable Code = "UNAVAILABLE"
	CodeInternal    Code = "INTERNAL_ERROR"
)

// Problem explains why a request failed.
type Problem struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (p *Problem) Error() string {
	return string(p.Code) + ": " + p.Message
}

// Page describes the slice of a collection returned by a list endpoint.
type Page struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// Envelope wraps every response body. Exactly one of Data and Error is set.
type Envelope struct {
	Status     string    `json:"status"` // "ok" or "error"
	RequestID  string    `json:"request_id"`
	Timestamp  time.Time `json:"timestamp"`
	Data       any       `json:"data"`
	Pagination *Page     `json:"pagination,omitempty"`
	Error      *Problem  `json:"error"`
}

// reply writes envelopes for one request.
type reply struct {
	w      http.ResponseWriter
	id     string
	logger *slog.Logger
}

func (s *Server) replyTo(w http.ResponseWriter, r *http.Request) reply {
	return reply{w: w, id: RequestIDFromContext(r.Context()), logger: s.logger}
}

func (rp reply) ok(data any)      { rp.send(http.StatusOK, data, nil) }
func (rp reply) created(data any) { rp.send(http.StatusCreated, data, nil) }

func (rp reply) page(data any, pg Page) { rp.send(http.StatusOK, data, &pg) }

// invalid answers 400 with a formatted validation message.
func (rp reply) invalid(format string, args ...any) {
	rp.fail(http.StatusBadRequest, CodeValidation, fmt.Sprintf(format, args...))
}

func (rp reply) fail(status int, code Code, message string) {
	rp.write(status, Envelope{Status: "error", Error: &Problem{Code: code, Message: message}})
}

func (rp reply) send(status int, data any, pg *Page) {
	rp.write(status, Envelope{Status: "ok", Data: data, Pagination: pg})
}

func (rp reply) write(status int, env Envelope) {
	env.RequestID = rp.id
	env.Timestamp = time.Now().UTC()

	rp.w.Header().Set("Content-Type", "application/json")
	rp.w.WriteHeader(status)
	if err := json.NewEncoder(rp.w).Encode(env); err != nil {
		rp.logger.Warn("write response", "request_id", rp.id, "error", err)
	}
}
