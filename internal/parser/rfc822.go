package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// ErrInvalidRawEmail is returned when raw RFC 822 text cannot be read
var ErrInvalidRawEmail = errors.New("invalid raw email")

// RawEmail holds the fields read from an RFC 822 message
type RawEmail struct {
	From    string
	To      string
	Subject string
	Body    string
}

// ParseRawEmail reads sender, recipients, subject and the first text/plain
// part of an RFC 822 message. HTML parts are only used when no plain text
// part exists.
func ParseRawEmail(raw string) (RawEmail, error) {
	if strings.TrimSpace(raw) == "" {
		return RawEmail{}, fmt.Errorf("%w: empty message", ErrInvalidRawEmail)
	}

	mr, err := mail.CreateReader(strings.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return RawEmail{}, fmt.Errorf("%w: %v", ErrInvalidRawEmail, err)
	}
	defer mr.Close()

	if !mr.Header.Has("From") && !mr.Header.Has("Subject") {
		return RawEmail{}, fmt.Errorf("%w: no headers", ErrInvalidRawEmail)
	}

	var email RawEmail
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].Address
	} else {
		email.From = strings.TrimSpace(mr.Header.Get("From"))
	}
	if to, err := mr.Header.AddressList("To"); err == nil && len(to) > 0 {
		addrs := make([]string, 0, len(to))
		for _, a := range to {
			addrs = append(addrs, a.Address)
		}
		email.To = strings.Join(addrs, ", ")
	}
	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = strings.TrimSpace(subject)
	} else {
		email.Subject = strings.TrimSpace(mr.Header.Get("Subject"))
	}

	var htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return RawEmail{}, fmt.Errorf("%w: read part: %v", ErrInvalidRawEmail, err)
		}
		if part == nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		content, err := io.ReadAll(part.Body)
		if err != nil {
			return RawEmail{}, fmt.Errorf("%w: read body: %v", ErrInvalidRawEmail, err)
		}

		switch {
		case contentType == "" || contentType == "text/plain":
			if email.Body == "" {
				email.Body = strings.TrimSpace(string(content))
			}
		case contentType == "text/html":
			if htmlBody == "" {
				htmlBody = strings.TrimSpace(string(content))
			}
		}
	}
	if email.Body == "" {
		email.Body = htmlBody
	}

	return email, nil
}
