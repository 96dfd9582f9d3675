// Package services contains the outbound integrations used to deliver
// verification codes.
package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupportedContact is returned by senders that cannot reach a contact.
var ErrUnsupportedContact = errors.New("services: contact not supported by sender")

// CodeSender delivers a verification code to a contact.
type CodeSender interface {
	SendCode(ctx context.Context, contact, code string) error
}

// IsPhoneContact reports whether contact is "<country code> <digits>".
func IsPhoneContact(contact string) bool {
	return strings.HasPrefix(contact, "+") && !strings.Contains(contact, "@")
}

// LogSender writes codes to the log. Development only.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{log: log.Named("codes")}
}

func (s *LogSender) SendCode(_ context.Context, contact, code string) error {
	s.log.Info("verification code issued", zap.String("contact", contact), zap.String("code", code))
	return nil
}

// ContactRouter sends phone contacts through SMS and everything else through
// Other.
type ContactRouter struct {
	SMS   CodeSender
	Other CodeSender
}

func (r ContactRouter) SendCode(ctx context.Context, contact, code string) error {
	if IsPhoneContact(contact) && r.SMS != nil {
		return r.SMS.SendCode(ctx, contact, code)
	}
	if r.Other == nil {
		return ErrUnsupportedContact
	}
	return r.Other.SendCode(ctx, contact, code)
}
