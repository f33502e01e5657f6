// Package email sends transactional email. The only message the platform
// sends today is the account verification code.
package email

import (
	"context"
	"fmt"
)

// Message is a single outbound email.
type Message struct {
	To        string
	ToName    string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationMessage builds the account verification email for the given
// recipient and one-time code.
func VerificationMessage(to, name, code string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Verify your StackSkills account",
		PlainBody: fmt.Sprintf(
			"Hi %s,\n\nYour StackSkills verification code is: %s\n\nThis code expires in 15 minutes. If you did not create an account, you can ignore this email.\n",
			name, code),
		HTMLBody: fmt.Sprintf(
			`<p>Hi %s,</p><p>Your StackSkills verification code is:</p><p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p><p>This code expires in 15 minutes. If you did not create an account, you can ignore this email.</p>`,
			name, code),
	}
}
