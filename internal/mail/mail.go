// Package mail sends account emails (verification and password reset).
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the standard logger instead of delivering them.
type LogMailer struct {
	From string
}

// Send logs the message.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.From
	}
	log.Printf("[mail] to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}

// VerificationEmail builds the message sent after registration.
func VerificationEmail(to, name, link string) Message {
	return Message{
		To:      to,
		Subject: "Verify your email for Career Compass",
		Body: fmt.Sprintf("Hi %s,\n\nFollow this link to verify your email address:\n\n%s\n\n"+
			"If you didn't ask to verify this address, you can ignore this email.\n",
			greetingName(name), link),
	}
}

// PasswordResetEmail builds the password reset message.
func PasswordResetEmail(to, name, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your Career Compass password",
		Body: fmt.Sprintf("Hi %s,\n\nFollow this link to reset your password:\n\n%s\n\n"+
			"If you didn't ask to reset your password, you can ignore this email.\n",
			greetingName(name), link),
	}
}

func greetingName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return strings.TrimSpace(name)
}

// RFC822 renders msg with headers suitable for a raw send.
func RFC822(msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.Bytes()
}
