package parser

import (
	"errors"
	"fmt"
	"strings"

	"mock-relayer-go/internal/model"
)

// ErrInvalidCommand is returned when a subject does not start with a known command
var ErrInvalidCommand = errors.New("invalid command in subject")

var commands = map[string]model.CommandType{
	"LIST":   model.CommandList,
	"CANCEL": model.CommandCancel,
	"CLAIM":  model.CommandClaim,
}

// ParseCommand extracts the command and its parameters from an email subject.
// Expected format: "<command> [param ...]", command matched case-insensitively.
func ParseCommand(subject string) (model.EmailCommand, error) {
	words := strings.Fields(subject)
	if len(words) == 0 {
		return model.EmailCommand{}, fmt.Errorf("%w: empty subject", ErrInvalidCommand)
	}

	command, ok := commands[strings.ToUpper(words[0])]
	if !ok {
		return model.EmailCommand{}, fmt.Errorf("%w: %q", ErrInvalidCommand, words[0])
	}

	params := make([]string, 0, len(words)-1)
	params = append(params, words[1:]...)

	return model.EmailCommand{
		Command: command,
		Params:  params,
	}, nil
}
