package model

import "encoding/json"

// EmailSubmission represents an inbound email handed to the relayer
type EmailSubmission struct {
	From    string          `json:"from" binding:"required_without=Raw"`
	To      string          `json:"to" binding:"required_without=Raw"`
	Subject string          `json:"subject"`
	Body    string          `json:"body" binding:"required_without=Raw"`
	Headers json.RawMessage `json:"headers,omitempty"`
	// Raw optionally carries the full RFC 822 source. Parsed fields only fill
	// the ones left empty above.
	Raw string `json:"raw,omitempty"`
}

// CommandType is the intent encoded in the first word of a subject line
type CommandType string

const (
	CommandList   CommandType = "LIST"
	CommandCancel CommandType = "CANCEL"
	CommandClaim  CommandType = "CLAIM"
)

// EmailCommand represents a parsed subject line
type EmailCommand struct {
	Command CommandType `json:"command"`
	Params  []string    `json:"params"`
}

// Param returns the i-th parameter, if present
func (c EmailCommand) Param(i int) (string, bool) {
	if i < 0 || i >= len(c.Params) {
		return "", false
	}
	return c.Params[i], true
}
